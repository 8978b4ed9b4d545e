package jsontree

// Parse parses JSONC text and returns the root node of the tree, or nil
// when the text contains no JSON value at all (empty or comment-only
// input). Syntax problems do not abort the parse; the best-effort tree
// is returned and the problems are discarded. Use ParseWithErrors when
// the caller cares about them.
func Parse(text string) *Node {
	root, _ := ParseWithErrors(text)
	return root
}

// ParseWithErrors is Parse with the recorded syntax problems attached.
// A non-nil root may still be accompanied by errors (tolerant parse);
// a nil root with no errors means the input held no value.
func ParseWithErrors(text string) (*Node, []SyntaxError) {
	p := &parser{sc: &scanner{src: text}}
	p.advance()
	if p.tok.kind == tokEOF {
		return nil, p.sc.errs
	}
	root := p.parseValue(nil)
	if root == nil {
		return nil, p.sc.errs
	}
	if p.tok.kind != tokEOF {
		p.sc.errorf(p.tok.offset, "unexpected trailing content")
	}
	return root, p.sc.errs
}

type parser struct {
	sc  *scanner
	tok token
}

func (p *parser) advance() {
	p.tok = p.sc.next()
}

// parseValue parses a single value at the current token. Returns nil
// when the token cannot start a value; the offending token is consumed
// so the caller can make progress.
func (p *parser) parseValue(parent *Node) *Node {
	switch p.tok.kind {
	case tokLBrace:
		return p.parseObject(parent)
	case tokLBracket:
		return p.parseArray(parent)
	case tokString:
		n := &Node{Kind: KindString, Value: p.tok.str, Offset: p.tok.offset, Length: p.tok.length, Parent: parent}
		p.advance()
		return n
	case tokNumber:
		n := &Node{Kind: KindNumber, Value: p.tok.num, Offset: p.tok.offset, Length: p.tok.length, Parent: parent}
		p.advance()
		return n
	case tokTrue, tokFalse:
		n := &Node{Kind: KindBoolean, Value: p.tok.kind == tokTrue, Offset: p.tok.offset, Length: p.tok.length, Parent: parent}
		p.advance()
		return n
	case tokNull:
		n := &Node{Kind: KindNull, Offset: p.tok.offset, Length: p.tok.length, Parent: parent}
		p.advance()
		return n
	case tokBad:
		p.advance()
		return nil
	default:
		p.sc.errorf(p.tok.offset, "value expected")
		p.advance()
		return nil
	}
}

// parseObject parses `{...}`. Recovery rules: a missing colon or value
// is reported and the property dropped; stray commas (including a
// trailing one, a JSONC extension) are skipped silently.
func (p *parser) parseObject(parent *Node) *Node {
	obj := &Node{Kind: KindObject, Offset: p.tok.offset, Parent: parent}
	p.advance() // '{'

	for {
		switch p.tok.kind {
		case tokRBrace:
			obj.Length = p.tok.end() - obj.Offset
			p.advance()
			return obj
		case tokEOF:
			p.sc.errorf(p.tok.offset, "unclosed object")
			obj.Length = p.tok.offset - obj.Offset
			return obj
		case tokComma:
			p.advance()
		case tokString:
			key := &Node{Kind: KindString, Value: p.tok.str, Offset: p.tok.offset, Length: p.tok.length}
			p.advance()
			if p.tok.kind != tokColon {
				p.sc.errorf(key.Offset, "colon expected after property name %q", key.Value)
				continue
			}
			p.advance() // ':'
			value := p.parseValue(nil)
			if value == nil {
				continue
			}
			prop := &Node{
				Kind:     KindProperty,
				Offset:   key.Offset,
				Length:   value.End() - key.Offset,
				Parent:   obj,
				Children: []*Node{key, value},
			}
			key.Parent = prop
			value.Parent = prop
			obj.Children = append(obj.Children, prop)
		default:
			p.sc.errorf(p.tok.offset, "property name expected")
			p.advance()
		}
	}
}

// parseArray parses `[...]`. Trailing commas are tolerated; anything
// that fails to parse as a value is dropped and reported.
func (p *parser) parseArray(parent *Node) *Node {
	arr := &Node{Kind: KindArray, Offset: p.tok.offset, Parent: parent}
	p.advance() // '['

	for {
		switch p.tok.kind {
		case tokRBracket:
			arr.Length = p.tok.end() - arr.Offset
			p.advance()
			return arr
		case tokEOF:
			p.sc.errorf(p.tok.offset, "unclosed array")
			arr.Length = p.tok.offset - arr.Offset
			return arr
		case tokComma:
			p.advance()
		default:
			elem := p.parseValue(arr)
			if elem != nil {
				arr.Children = append(arr.Children, elem)
			}
		}
	}
}
