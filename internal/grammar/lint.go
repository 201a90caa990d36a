package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tylerk07/hexgrammar/internal/evalexpr"
)

// LintResult is the output of Lint (spec.md §4.2).
type LintResult struct {
	Success  bool
	Grammar  *Grammar
	Errors   []string
	Warnings []string
}

var arrayOfRe = regexp.MustCompile(`^array of ([A-Za-z0-9_]+)$`)

type linter struct {
	errors   []string
	warnings []string

	order    map[string][]string // declaration-order key lists, keyed by logical path
	rawTypes map[string]any
	resolved map[string]map[string]any // memoized alias resolution

	usedTypes map[string]bool // reached from switch
}

// mappingKeyOrder walks a parsed yaml.Node document to recover the
// declaration order of a nested mapping's keys, since decoding into
// map[string]any erases order. path is a sequence of mapping keys from
// the document root.
func mappingKeyOrder(doc *yaml.Node, path ...string) []string {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	node := doc.Content[0]
	for _, key := range path {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		found := false
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				node = node.Content[i+1]
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

// Lint parses a grammar document and validates every static invariant in
// spec.md §4.2, returning a validated immutable Grammar on success.
func Lint(text string) LintResult {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return LintResult{Errors: []string{fmt.Sprintf("YAML parse error: %v", err)}}
	}
	var doc map[string]any
	if len(root.Content) > 0 {
		if err := root.Content[0].Decode(&doc); err != nil {
			return LintResult{Errors: []string{fmt.Sprintf("YAML parse error: %v", err)}}
		}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	l := &linter{
		order:     map[string][]string{"types": mappingKeyOrder(&root, "types"), "registry": mappingKeyOrder(&root, "registry"), "cases": mappingKeyOrder(&root, "record", "switch", "cases")},
		resolved:  map[string]map[string]any{},
		usedTypes: map[string]bool{},
	}

	format, _ := doc["format"].(string)
	if format != "record_stream" {
		l.err("format must be 'record_stream'")
	}

	rootEndian := Little
	if rawEndian, ok := doc["endian"]; ok {
		if s, ok := rawEndian.(string); ok {
			if e, err := normalizeEndian(s); err != nil {
				l.err(err.Error())
			} else {
				rootEndian = e
			}
		} else {
			l.err("endian must be a string")
		}
	}

	repeat := "until_eof"
	if rawFraming, ok := doc["framing"]; ok {
		if fm, ok := rawFraming.(map[string]any); ok {
			if r, ok := fm["repeat"].(string); ok {
				if r != "until_eof" {
					l.err(fmt.Sprintf("framing.repeat: unsupported repetition policy %q", r))
				} else {
					repeat = r
				}
			}
		} else {
			l.err("framing must be a mapping")
		}
	}

	rawTypes := map[string]any{}
	if rt, ok := doc["types"]; ok {
		if m, ok := rt.(map[string]any); ok {
			rawTypes = m
		} else {
			l.err("types must be a mapping of name -> type spec")
		}
	}
	l.rawTypes = rawTypes

	typeOrder := l.order["types"]
	types := map[string]*Field{}
	for _, name := range typeOrder {
		spec, ok := rawTypes[name].(map[string]any)
		if !ok {
			l.err(fmt.Sprintf("types[%s] must be a mapping with a 'type'", name))
			continue
		}
		node := l.parseNode(spec, fmt.Sprintf("types[%s]", name), nil, false)
		if node != nil {
			node.Name = name
			types[name] = node
		}
	}

	var sw *RecordSwitch
	if rawRecord, ok := doc["record"]; ok {
		rm, ok := rawRecord.(map[string]any)
		if !ok {
			l.err("record must be a mapping")
		} else if rawSwitch, ok := rm["switch"]; ok {
			sm, ok := rawSwitch.(map[string]any)
			if !ok {
				l.err("record.switch must be a mapping")
			} else {
				sw = l.parseSwitch(sm, types)
			}
		}
	}

	if len(typeOrder) == 0 {
		l.warn("grammar declares no types")
	}

	if sw != nil {
		reachable := map[string]bool{}
		for _, t := range sw.Cases {
			reachable[t] = true
		}
		if sw.Default != "" {
			reachable[sw.Default] = true
		}
		for _, name := range typeOrder {
			if !reachable[name] {
				l.warn(fmt.Sprintf("type %q is unreferenced by the record switch", name))
			}
		}
	}

	registryOrder := l.order["registry"]
	registry := map[string]RegistryEntry{}
	var finalRegistryOrder []string
	if rawReg, ok := doc["registry"]; ok {
		rm, ok := rawReg.(map[string]any)
		if !ok {
			l.err("registry must be a mapping")
		} else {
			for _, key := range registryOrder {
				entrySpec, ok := rm[key].(map[string]any)
				if !ok {
					l.err(fmt.Sprintf("registry[%s] must be a mapping", key))
					continue
				}
				entry, canon := l.parseRegistryEntry(key, entrySpec)
				if canon == "" {
					continue
				}
				if _, dup := registry[canon]; dup {
					l.err(fmt.Sprintf("registry: duplicate canonical key %s (from %s)", canon, key))
					continue
				}
				registry[canon] = entry
				finalRegistryOrder = append(finalRegistryOrder, canon)
			}
		}
	}

	if len(l.errors) > 0 {
		return LintResult{Errors: l.errors, Warnings: l.warnings}
	}

	g := &Grammar{
		Format:        format,
		Endian:        rootEndian,
		Repeat:        repeat,
		Switch:        sw,
		TypeOrder:     typeOrder,
		Types:         types,
		RegistryOrder: finalRegistryOrder,
		Registry:      registry,
	}
	return LintResult{Success: true, Grammar: g, Warnings: l.warnings}
}

func (l *linter) err(msg string)  { l.errors = append(l.errors, msg) }
func (l *linter) warn(msg string) { l.warnings = append(l.warnings, msg) }

// canonicalDiscriminatorKey implements spec.md §9's chosen convention:
// canonical is "0x%04X" (uppercase, zero-padded to 4 hex digits).
func canonicalDiscriminatorKey(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return "", fmt.Errorf("invalid hex discriminator key %q", raw)
	}
	return fmt.Sprintf("0x%04X", v), nil
}

func (l *linter) parseSwitch(sm map[string]any, types map[string]*Field) *RecordSwitch {
	exprRaw, _ := sm["expr"].(string)
	parts := strings.SplitN(exprRaw, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		l.err(fmt.Sprintf("record.switch.expr must be 'TypeName.field_name', got %q", exprRaw))
		return nil
	}
	sw := &RecordSwitch{ExprType: parts[0], ExprField: parts[1], Cases: map[string]string{}}

	if _, ok := types[sw.ExprType]; !ok {
		l.err(fmt.Sprintf("record.switch.expr references undefined type %q", sw.ExprType))
	}

	casesRaw, _ := sm["cases"].(map[string]any)
	caseKeys := l.order["cases"]
	for _, k := range caseKeys {
		typeName, _ := casesRaw[k].(string)
		canon, err := canonicalDiscriminatorKey(k)
		if err != nil {
			l.err(fmt.Sprintf("record.switch.cases: %v", err))
			continue
		}
		if typeName == "" {
			l.err(fmt.Sprintf("record.switch.cases[%s] must name a type", k))
			continue
		}
		if _, ok := types[typeName]; !ok {
			l.err(fmt.Sprintf("record.switch.cases[%s]: unknown type %q", k, typeName))
			continue
		}
		sw.Cases[canon] = typeName
	}

	def, _ := sm["default"].(string)
	if def == "" {
		l.err("record.switch.default is required")
	} else if _, ok := types[def]; !ok {
		l.err(fmt.Sprintf("record.switch.default: unknown type %q", def))
	}
	sw.Default = def
	return sw
}

func (l *linter) parseRegistryEntry(rawKey string, spec map[string]any) (RegistryEntry, string) {
	canon, err := canonicalDiscriminatorKey(rawKey)
	if err != nil {
		l.err(fmt.Sprintf("registry: %v", err))
		return RegistryEntry{}, ""
	}
	name, _ := spec["name"].(string)
	decodeSpec, ok := spec["decode"].(map[string]any)
	if !ok {
		l.err(fmt.Sprintf("registry[%s].decode must be a mapping", rawKey))
		return RegistryEntry{}, ""
	}
	as, _ := decodeSpec["as"].(string)
	entry := RegistryEntry{Key: canon, DisplayName: name, Decoder: DecoderKind(as)}
	if field, ok := decodeSpec["field"].(string); ok {
		entry.Field = field
	}
	switch entry.Decoder {
	case DecodeNone, DecodeHex, DecodeFtmPacked, DecodeDOSDate, DecodeUnixSecLE:
		// no extra params required
	case DecodeString:
		enc, _ := decodeSpec["encoding"].(string)
		if enc == "" {
			enc = "ascii"
		}
		if !validEncoding(enc) {
			l.err(fmt.Sprintf("registry[%s].decode.encoding unsupported: %s", rawKey, enc))
		}
		entry.Encoding = enc
	case DecodeU16, DecodeU32:
		if e, ok := decodeSpec["endian"].(string); ok {
			en, err := normalizeEndian(e)
			if err != nil {
				l.err(fmt.Sprintf("registry[%s].decode.endian: %v", rawKey, err))
			} else {
				entry.Endian = &en
			}
		}
	case DecodeInt:
		width, werr := intField(decodeSpec, "width")
		if werr != nil || width <= 0 {
			l.err(fmt.Sprintf("registry[%s].decode.width required and must be > 0", rawKey))
		}
		entry.Width = width
		if e, ok := decodeSpec["endian"].(string); ok {
			en, err := normalizeEndian(e)
			if err != nil {
				l.err(fmt.Sprintf("registry[%s].decode.endian: %v", rawKey, err))
			} else {
				entry.Endian = &en
			}
		}
		if signed, ok := decodeSpec["signed"].(bool); ok {
			entry.Signed = signed
		}
	case DecodeBitflags:
		width, werr := intField(decodeSpec, "width")
		if werr != nil || width <= 0 {
			l.err(fmt.Sprintf("registry[%s].decode.width required and must be > 0", rawKey))
		}
		entry.Width = width
	default:
		l.err(fmt.Sprintf("registry[%s].decode.as unsupported decoder: %s", rawKey, as))
	}
	return entry, canon
}

func validEncoding(enc string) bool {
	switch enc {
	case "ascii", "utf-8", "utf-16le", "utf-16be":
		return true
	}
	return false
}

func intField(m map[string]any, key string) (int, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing")
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("not a number")
	}
}

// asInt accepts YAML ints or decimal/hex strings like Node/offset parsing.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case string:
		base := 10
		s := n
		if strings.HasPrefix(strings.ToLower(s), "0x") {
			base = 16
			s = s[2:]
		}
		i, err := strconv.ParseInt(s, base, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// parseLengthValue implements the sugar rules from spec.md §6.1:
// integer -> literal; numeric string -> literal; plain identifier string
// -> field ref; string with operators -> expression.
func parseLengthValue(raw any) Length {
	if raw == nil {
		return Length{}
	}
	switch v := raw.(type) {
	case int, int64, float64:
		n, _ := asInt(v)
		return Length{Kind: LengthLiteral, Literal: n}
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 0, 64); err == nil {
			return Length{Kind: LengthLiteral, Literal: n}
		}
		if isBareIdentifier(s) {
			return Length{Kind: LengthRef, Ref: s}
		}
		return Length{Kind: LengthExpr, Expr: s}
	}
	return Length{}
}

// resolveLengthSpec resolves a field's length, preferring the explicit
// length_field/length_expr keys (spec.md §3) over the length: sugar form,
// which spec.md §6.1 defines in terms of them.
func resolveLengthSpec(spec map[string]any, ctx string) Length {
	if lf, ok := spec["length_field"].(string); ok && lf != "" {
		return Length{Kind: LengthRef, Ref: lf}
	}
	if le, ok := spec["length_expr"].(string); ok && le != "" {
		return Length{Kind: LengthExpr, Expr: le}
	}
	return parseLengthValue(spec["length"])
}

var bareIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isBareIdentifier(s string) bool {
	return bareIdentRe.MatchString(s)
}

// parseNode parses one field spec (a mapping) into a *Field, recording
// errors on l. siblingNames tracks already-declared sibling names for the
// forward-reference rule (spec.md §4.2); it is nil outside struct bodies.
// isChunkPayload relaxes the "bytes requires length" rule since chunks
// supply the payload's length themselves.
func (l *linter) parseNode(spec map[string]any, ctx string, siblingNames map[string]bool, isChunkPayload bool) *Field {
	return l.parseNodeStack(spec, ctx, siblingNames, isChunkPayload, nil)
}

func (l *linter) parseNodeStack(spec map[string]any, ctx string, siblingNames map[string]bool, isChunkPayload bool, stack []string) *Field {
	name, _ := spec["name"].(string)
	if name == "" {
		name = ctx
	}

	rawOffset, hasOffset := spec["offset"]
	rawSkip, hasSkip := spec["skip"]
	if hasOffset && hasSkip {
		l.err(fmt.Sprintf("%s cannot specify both offset and skip", ctx))
		return nil
	}
	var offset, skip *int64
	if hasOffset {
		n, ok := asInt(rawOffset)
		if !ok || n < 0 {
			l.err(fmt.Sprintf("%s.offset must be a non-negative integer", ctx))
			return nil
		}
		offset = &n
	}
	if hasSkip {
		n, ok := asInt(rawSkip)
		if !ok || n < 0 {
			l.err(fmt.Sprintf("%s.skip must be a non-negative integer", ctx))
			return nil
		}
		skip = &n
	}

	var fieldEndian *Endian
	if rawEndian, ok := spec["endian"].(string); ok {
		e, err := normalizeEndian(rawEndian)
		if err != nil {
			l.err(fmt.Sprintf("%s.endian: %v", ctx, err))
			return nil
		}
		fieldEndian = &e
	}

	fieldColor := ""
	if rawColor, ok := spec["color"].(string); ok {
		c, err := normalizeColor(rawColor)
		if err != nil {
			l.err(fmt.Sprintf("%s.color: %v", ctx, err))
			return nil
		}
		fieldColor = c
	}

	ftype, _ := spec["type"].(string)
	if ftype == "" {
		l.err(fmt.Sprintf("%s.type is required", ctx))
		return nil
	}

	if m := arrayOfRe.FindStringSubmatch(ftype); m != nil {
		if _, ok := spec["element"]; ok {
			l.err(fmt.Sprintf("%s: array-of shorthand cannot also specify 'element'", ctx))
			return nil
		}
		rewritten := map[string]any{}
		for k, v := range spec {
			rewritten[k] = v
		}
		rewritten["type"] = "array"
		rewritten["element"] = map[string]any{"type": m[1]}
		spec = rewritten
		ftype = "array"
	}

	switch ftype {
	case string(U8), string(U16), string(U32), string(U64),
		string(I8), string(I16), string(I32), string(I64),
		string(F32), string(F64), string(Bytes), string(String):
		return l.parsePrimitive(spec, ctx, name, offset, skip, fieldEndian, fieldColor, PrimKind(ftype), isChunkPayload)
	case "struct":
		return l.parseStruct(spec, ctx, name, offset, skip, fieldEndian, fieldColor, stack)
	case "array":
		return l.parseArray(spec, ctx, name, offset, skip, fieldEndian, fieldColor, stack)
	case "chunk":
		return l.parseChunk(spec, ctx, name, offset, skip, fieldEndian, fieldColor, stack)
	default:
		alias := l.resolveAlias(ftype, stack)
		if alias == nil {
			l.err(fmt.Sprintf("%s: unknown type reference: %s", ctx, ftype))
			return nil
		}
		merged := map[string]any{}
		for k, v := range alias {
			merged[k] = v
		}
		for k, v := range spec {
			if k == "type" || k == "name" || k == "offset" || k == "skip" {
				continue
			}
			merged[k] = v
		}
		merged["name"] = name
		if offset != nil {
			merged["offset"] = *offset
		} else {
			delete(merged, "offset")
		}
		if skip != nil {
			merged["skip"] = *skip
		} else {
			delete(merged, "skip")
		}
		return l.parseNodeStack(merged, ctx+".expanded", siblingNames, isChunkPayload, append(stack, ftype))
	}
}

// resolveAlias expands a types[] entry by name, chasing alias chains with
// cycle detection and memoization (spec.md §4.2, §9).
func (l *linter) resolveAlias(name string, stack []string) map[string]any {
	for _, s := range stack {
		if s == name {
			chain := strings.Join(append(append([]string{}, stack...), name), " -> ")
			l.err(fmt.Sprintf("type cycle detected: %s", chain))
			return nil
		}
	}
	if cached, ok := l.resolved[name]; ok {
		return cached
	}
	tdef, ok := l.rawTypes[name].(map[string]any)
	if !ok {
		l.err(fmt.Sprintf("unknown type reference: %s", name))
		return nil
	}
	innerType, _ := tdef["type"].(string)
	if innerType == "" {
		l.err(fmt.Sprintf("types[%s] must be a mapping with a 'type'", name))
		return nil
	}
	switch innerType {
	case string(U8), string(U16), string(U32), string(U64),
		string(I8), string(I16), string(I32), string(I64),
		string(F32), string(F64), string(Bytes), string(String),
		"struct", "array", "chunk":
		l.resolved[name] = tdef
		return tdef
	default:
		if m := arrayOfRe.FindStringSubmatch(innerType); m != nil {
			l.resolved[name] = tdef
			return tdef
		}
		inner := l.resolveAlias(innerType, append(stack, name))
		if inner == nil {
			return nil
		}
		merged := map[string]any{}
		for k, v := range inner {
			merged[k] = v
		}
		for k, v := range tdef {
			if k == "type" {
				continue
			}
			merged[k] = v
		}
		l.resolved[name] = merged
		return merged
	}
}

func (l *linter) parsePrimitive(spec map[string]any, ctx, name string, offset, skip *int64, fieldEndian *Endian, fieldColor string, kind PrimKind, isChunkPayload bool) *Field {
	prim := &Primitive{Type: kind}

	switch kind {
	case String:
		enc, _ := spec["encoding"].(string)
		if enc == "" {
			enc = "ascii"
		}
		if !validEncoding(enc) {
			l.err(fmt.Sprintf("%s.encoding unsupported: %s", ctx, enc))
			return nil
		}
		prim.Encoding = enc
		if nt, _ := spec["null_terminated"].(bool); nt {
			maxLen, ok := asInt(spec["max_length"])
			if !ok || maxLen <= 0 {
				l.err(fmt.Sprintf("%s.max_length required and must be > 0 when null_terminated", ctx))
				return nil
			}
			prim.NullTerminated = true
			prim.Length = Length{Kind: LengthNullTerminated, MaxLength: maxLen}
		} else {
			ln := resolveLengthSpec(spec, ctx)
			if !ln.IsSet() {
				l.err(fmt.Sprintf("%s.length required for string (int or ref)", ctx))
				return nil
			}
			if ln.Kind == LengthLiteral && ln.Literal <= 0 {
				l.err(fmt.Sprintf("%s.length must be > 0 for string", ctx))
				return nil
			}
			prim.Length = ln
		}
	case Bytes:
		ln := resolveLengthSpec(spec, ctx)
		if !isChunkPayload {
			if !ln.IsSet() {
				l.err(fmt.Sprintf("%s.length required for bytes (int or ref)", ctx))
				return nil
			}
			if ln.Kind == LengthLiteral && ln.Literal <= 0 {
				l.err(fmt.Sprintf("%s.length must be > 0 for bytes", ctx))
				return nil
			}
		}
		prim.Length = ln
	}

	return &Field{
		Name: name, Kind: KindPrimitive, Offset: offset, Skip: skip,
		Endian: fieldEndian, Color: fieldColor, Prim: prim,
	}
}

func (l *linter) parseStruct(spec map[string]any, ctx, name string, offset, skip *int64, fieldEndian *Endian, fieldColor string, stack []string) *Field {
	rawFields, _ := spec["fields"].([]any)
	if len(rawFields) == 0 {
		l.err(fmt.Sprintf("%s.fields must be a non-empty list for struct", ctx))
		return nil
	}
	var children []*Field
	declared := map[string]bool{}
	for i, rf := range rawFields {
		sf, ok := rf.(map[string]any)
		if !ok {
			l.err(fmt.Sprintf("%s.fields[%d] must be a mapping", ctx, i))
			continue
		}
		child := l.parseNodeStack(sf, fmt.Sprintf("%s.fields[%d]", ctx, i), declared, false, stack)
		if child == nil {
			continue
		}
		if child.Kind == KindPrimitive && child.Prim != nil {
			switch child.Prim.Length.Kind {
			case LengthRef:
				if !declared[child.Prim.Length.Ref] {
					l.err(fmt.Sprintf("%s.fields[%d]: length_ref %q references unknown or later field", ctx, i, child.Prim.Length.Ref))
				}
			case LengthExpr:
				idents, err := evalexpr.Identifiers(child.Prim.Length.Expr)
				if err != nil {
					l.err(fmt.Sprintf("%s.fields[%d]: length_expr %q: %v", ctx, i, child.Prim.Length.Expr, err))
					break
				}
				for _, id := range idents {
					if !declared[id] {
						l.err(fmt.Sprintf("%s.fields[%d]: length_expr %q references unknown or later field %q", ctx, i, child.Prim.Length.Expr, id))
					}
				}
			}
		}
		children = append(children, child)
		declared[child.Name] = true
	}
	return &Field{
		Name: name, Kind: KindStruct, Offset: offset, Skip: skip,
		Endian: fieldEndian, Color: fieldColor, Fields: children,
	}
}

func (l *linter) parseArray(spec map[string]any, ctx, name string, offset, skip *int64, fieldEndian *Endian, fieldColor string, stack []string) *Field {
	ln := resolveLengthSpec(spec, ctx)
	if !ln.IsSet() {
		l.err(fmt.Sprintf("%s requires length", ctx))
		return nil
	}
	if ln.Kind == LengthLiteral && ln.Literal < 0 {
		l.err(fmt.Sprintf("%s.length must be non-negative", ctx))
		return nil
	}

	if layout, _ := spec["layout"].(string); layout == "soa" {
		return l.parseSOA(spec, ctx, name, offset, skip, fieldEndian, fieldColor, ln, stack)
	}

	elementSpec, ok := spec["element"].(map[string]any)
	if !ok {
		l.err(fmt.Sprintf("%s.element must be a mapping", ctx))
		return nil
	}
	var stride *int64
	if rawStride, ok := spec["stride"]; ok {
		n, ok := asInt(rawStride)
		if !ok || n <= 0 {
			l.err(fmt.Sprintf("%s.stride must be > 0 if provided", ctx))
			return nil
		}
		stride = &n
	}
	elemMerged := map[string]any{}
	for k, v := range elementSpec {
		elemMerged[k] = v
	}
	elemMerged["name"] = name + ".elem"
	el := l.parseNodeStack(elemMerged, ctx+".element", nil, false, stack)
	if el == nil {
		return nil
	}
	return &Field{
		Name: name, Kind: KindArray, Offset: offset, Skip: skip,
		Endian: fieldEndian, Color: fieldColor,
		ArrayLength: ln, Element: el, Stride: stride,
	}
}

func (l *linter) parseSOA(spec map[string]any, ctx, name string, offset, skip *int64, fieldEndian *Endian, fieldColor string, ln Length, stack []string) *Field {
	rawFields, _ := spec["fields"].([]any)
	if len(rawFields) == 0 {
		l.err(fmt.Sprintf("%s.fields must be a non-empty list for layout: soa", ctx))
		return nil
	}
	var children []*Field
	for i, rf := range rawFields {
		sf, ok := rf.(map[string]any)
		if !ok {
			l.err(fmt.Sprintf("%s.fields[%d] must be a mapping", ctx, i))
			continue
		}
		if _, hasOff := sf["offset"]; hasOff {
			l.err(fmt.Sprintf("%s.fields[%d]: offset not allowed for layout: soa", ctx, i))
			continue
		}
		if _, hasSkip := sf["skip"]; hasSkip {
			l.err(fmt.Sprintf("%s.fields[%d]: skip not allowed for layout: soa", ctx, i))
			continue
		}
		merged := map[string]any{}
		for k, v := range sf {
			merged[k] = v
		}
		if _, ok := merged["name"]; !ok {
			merged["name"] = fmt.Sprintf("f%d", i)
		}
		child := l.parseNodeStack(merged, fmt.Sprintf("%s.fields[%d]", ctx, i), nil, false, stack)
		if child == nil {
			continue
		}
		if child.Kind != KindPrimitive || child.Prim == nil {
			l.err(fmt.Sprintf("%s.fields[%d] must be a fixed-size primitive for layout: soa", ctx, i))
			continue
		}
		p := child.Prim
		if p.Type == String {
			if p.NullTerminated {
				l.err(fmt.Sprintf("%s.fields[%d] string cannot be null_terminated for layout: soa", ctx, i))
				continue
			}
			if p.Length.Kind != LengthLiteral {
				l.err(fmt.Sprintf("%s.fields[%d] string requires a fixed length for layout: soa", ctx, i))
				continue
			}
		}
		if p.Type == Bytes && (p.Length.Kind != LengthLiteral || p.Length.Literal <= 0) {
			l.err(fmt.Sprintf("%s.fields[%d] bytes requires a positive fixed length for layout: soa", ctx, i))
			continue
		}
		children = append(children, child)
	}
	if len(children) == 0 {
		return nil
	}
	return &Field{
		Name: name, Kind: KindSOA, Offset: offset, Skip: skip,
		Endian: fieldEndian, Color: fieldColor,
		SOAFields: children, SOALength: ln,
	}
}

func (l *linter) parseChunk(spec map[string]any, ctx, name string, offset, skip *int64, fieldEndian *Endian, fieldColor string, stack []string) *Field {
	lt, _ := spec["length_type"].(string)
	validLT := map[string]ChunkLengthType{
		"u8": ChunkU8, "u16 LE": ChunkU16LE, "u16 BE": ChunkU16BE,
		"u32 LE": ChunkU32LE, "u32 BE": ChunkU32BE,
	}
	clt, ok := validLT[lt]
	if !ok {
		l.err(fmt.Sprintf("%s.length_type must be one of: u16 LE, u16 BE, u32 LE, u32 BE, u8", ctx))
		return nil
	}
	includesHeader, _ := spec["length_includes_header"].(bool)

	payloadSpec, _ := spec["payload"].(map[string]any)
	if payloadSpec == nil {
		payloadSpec = map[string]any{"type": "bytes"}
	}
	merged := map[string]any{}
	for k, v := range payloadSpec {
		merged[k] = v
	}
	merged["name"] = name + ".payload"
	payload := l.parseNodeStack(merged, ctx+".payload", nil, true, stack)
	if payload == nil {
		return nil
	}
	return &Field{
		Name: name, Kind: KindChunk, Offset: offset, Skip: skip,
		Endian: fieldEndian, Color: fieldColor,
		LengthType: clt, LengthIncludesHeader: includesHeader, Payload: payload,
	}
}
