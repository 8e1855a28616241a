package coltype

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/tuannm99/novarow/internal/encerr"
)

// UDTResolver looks up user type definitions referenced by name while
// parsing. keyspace is empty when the reference is unqualified.
type UDTResolver interface {
	LookupUDT(keyspace, name string) (*UDTDef, bool)
}

// UDTMap resolves by bare name, or by "keyspace.name" when qualified.
type UDTMap map[string]*UDTDef

func (m UDTMap) LookupUDT(keyspace, name string) (*UDTDef, bool) {
	if keyspace != "" {
		if d, ok := m[keyspace+"."+name]; ok {
			return d, true
		}
	}
	d, ok := m[name]
	if ok && keyspace != "" && d.keyspace != "" && d.keyspace != keyspace {
		return nil, false
	}
	return d, ok
}

// Add registers def under its bare and qualified names.
func (m UDTMap) Add(def *UDTDef) {
	m[def.name] = def
	if def.keyspace != "" {
		m[def.keyspace+"."+def.name] = def
	}
}

var nativeByName = map[string]NativeKind{
	"ascii":     Ascii,
	"text":      Text,
	"varchar":   Text,
	"blob":      Blob,
	"boolean":   Boolean,
	"tinyint":   TinyInt,
	"smallint":  SmallInt,
	"int":       Int32,
	"bigint":    Int64,
	"counter":   Counter,
	"float":     Float32,
	"double":    Double,
	"timestamp": Timestamp,
	"uuid":      UUID,
	"timeuuid":  TimeUUID,
	"inet":      Inet,
	"varint":    Varint,
	"decimal":   Decimal,
	"date":      Date,
	"time":      Time,
	"duration":  Duration,
}

// Parse reads a type in protocol syntax such as "map<text, frozen<list<int>>>".
// Names that are not native kinds or composite keywords are resolved as UDTs
// through r, which may be nil when s references no UDTs.
func Parse(s string, r UDTResolver) (Type, error) {
	p := &typeParser{src: s, toks: tokenize(s), r: r}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("unexpected %q after type", p.peek())
	}
	return t, nil
}

type typeParser struct {
	src  string
	toks []string
	pos  int
	r    UDTResolver
}

func (p *typeParser) eof() bool { return p.pos >= len(p.toks) }

func (p *typeParser) peek() string {
	if p.eof() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *typeParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *typeParser) expect(tok string) error {
	if got := p.next(); got != tok {
		if got == "" {
			return p.errorf("expected %q, got end of input", tok)
		}
		return p.errorf("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *typeParser) errorf(format string, args ...any) error {
	e := encerr.SchemaType(format, args...)
	e.Detail = "parse " + quote(p.src) + ": " + e.Detail
	return e
}

func (p *typeParser) parseType() (Type, error) {
	tok := p.next()
	if tok == "" {
		return nil, p.errorf("expected type, got end of input")
	}

	switch strings.ToLower(tok) {
	case "frozen":
		return p.parseFrozen()
	case "list", "set":
		return p.parseListOrSet(strings.ToLower(tok), false)
	case "map":
		return p.parseMap(false)
	case "tuple":
		return p.parseTuple()
	case "vector":
		return p.parseVector()
	}

	if kind, ok := nativeByName[strings.ToLower(tok)]; ok {
		return natives[kind], nil
	}
	return p.resolveUDT(tok, false)
}

func (p *typeParser) parseFrozen() (Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	tok := p.next()
	var (
		t   Type
		err error
	)
	switch strings.ToLower(tok) {
	case "list", "set":
		t, err = p.parseListOrSet(strings.ToLower(tok), true)
	case "map":
		t, err = p.parseMap(true)
	case "tuple":
		t, err = p.parseTuple()
	case "frozen", "":
		return nil, p.errorf("frozen<> needs a collection, tuple or user type")
	case "vector":
		return nil, p.errorf("frozen<vector>: vectors cannot be frozen")
	default:
		if _, native := nativeByName[strings.ToLower(tok)]; native {
			return nil, p.errorf("frozen<%s>: native types cannot be frozen", tok)
		}
		t, err = p.resolveUDT(tok, true)
	}
	if err != nil {
		return nil, err
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *typeParser) parseListOrSet(kw string, frozen bool) (Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	if kw == "list" {
		return NewList(elem, frozen)
	}
	return NewSet(elem, frozen)
}

func (p *typeParser) parseMap(frozen bool) (Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	key, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(","); err != nil {
		return nil, err
	}
	val, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return NewMap(key, val, frozen)
}

func (p *typeParser) parseTuple() (Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	var elems []Type
	for {
		e, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.peek() != "," {
			break
		}
		p.next()
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return NewTuple(elems...)
}

func (p *typeParser) parseVector() (Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(","); err != nil {
		return nil, err
	}
	tok := p.next()
	dims, err := strconv.Atoi(tok)
	if err != nil {
		return nil, p.errorf("vector dimension %q is not an integer", tok)
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	return NewVector(elem, dims)
}

func (p *typeParser) resolveUDT(tok string, frozen bool) (Type, error) {
	if !isIdent(tok) {
		return nil, p.errorf("unexpected %q", tok)
	}
	keyspace, name := "", tok
	if ks, n, ok := strings.Cut(tok, "."); ok {
		keyspace, name = unquote(ks), n
	}
	name = unquote(name)

	if p.r == nil {
		return nil, p.errorf("unknown type %q", tok)
	}
	def, ok := p.r.LookupUDT(keyspace, name)
	if !ok {
		return nil, p.errorf("unknown type %q", tok)
	}
	return NewUDT(def, frozen)
}

// tokenize splits on the punctuation '<', '>' and ','. Whitespace separates
// tokens; double-quoted identifiers keep their content intact.
func tokenize(s string) []string {
	var (
		toks []string
		cur  strings.Builder
		inQ  bool
	)
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQ = !inQ
			cur.WriteRune(r)
		case inQ:
			cur.WriteRune(r)
		case r == '<' || r == '>' || r == ',':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

func isIdent(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !(r == '_' || r == '.' || r == '"' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func quote(s string) string { return "\"" + s + "\"" }
