package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/visibility"
)

// Evaluator is a small, dependency-free rule evaluator for visibility
// expressions.
//
// Supported forms:
//   - truthiness: `employed`
//   - comparisons: `employmentStatus == "yes"`, `salaryMin >= 30`, `count != 3`
//   - membership: `transportModes contains "bike"`
//   - composition: `a == true && (b || !c)`
//
// Values are read from visibility.Context.Values (with dot-path traversal)
// and visibility.Context.Extras via the `extras.` prefix.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

func (e *Evaluator) Eval(subject, rule string, ctx visibility.Context) (bool, error) {
	_ = subject
	prog, err := Compile(rule)
	if err != nil {
		return false, err
	}
	return prog.Eval(ctx)
}

// Program is a parsed rule ready for repeated evaluation.
type Program struct {
	node node
}

// Compile parses a rule without evaluating it, so definition linting can
// reject malformed expressions up front. An empty rule compiles to a program
// that always evaluates true.
func Compile(rule string) (*Program, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return &Program{}, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return &Program{}, nil
	}

	stream := &tokenStream{tokens: tokens}
	root, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return &Program{node: root}, nil
}

// Eval runs the program against the supplied context.
func (p *Program) Eval(ctx visibility.Context) (bool, error) {
	if p == nil || p.node == nil {
		return true, nil
	}
	return p.node.eval(ctx)
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenOperator
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type operator string

const (
	opEq       operator = "=="
	opNeq      operator = "!="
	opLt       operator = "<"
	opLte      operator = "<="
	opGt       operator = ">"
	opGte      operator = ">="
	opContains operator = "contains"
)

type token struct {
	kind tokenKind
	raw  string
	op   operator
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}

	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == '!':
			if peek(1) == '=' {
				tokens = append(tokens, token{kind: tokenOperator, raw: "!=", op: opNeq})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenNot, raw: "!"})
				i++
			}
		case ch == '=':
			if peek(1) != '=' {
				return nil, errors.New("visibility/expr: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{kind: tokenOperator, raw: "==", op: opEq})
			i += 2
		case ch == '<':
			if peek(1) == '=' {
				tokens = append(tokens, token{kind: tokenOperator, raw: "<=", op: opLte})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenOperator, raw: "<", op: opLt})
				i++
			}
		case ch == '>':
			if peek(1) == '=' {
				tokens = append(tokens, token{kind: tokenOperator, raw: ">=", op: opGte})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenOperator, raw: ">", op: opGt})
				i++
			}
		case ch == '&':
			if peek(1) != '&' {
				return nil, errors.New("visibility/expr: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			i += 2
		case ch == '|':
			if peek(1) != '|' {
				return nil, errors.New("visibility/expr: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			i += 2
		case ch == '"' || ch == '\'':
			value, width, err := scanString(input[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i += width
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case "null", "nil":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			case "contains", "in":
				tokens = append(tokens, token{kind: tokenOperator, raw: raw, op: opContains})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{kind: tokenNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
				}
			}
		}
	}

	return tokens, nil
}

func scanString(input string) (value string, width int, err error) {
	quote := input[0]
	escaped := false
	for j := 1; j < len(input); j++ {
		c := input[j]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == quote {
			raw := string(quote) + input[1:j] + string(quote)
			// strconv.Unquote rejects single quotes; normalise first.
			if quote == '\'' {
				raw = "\"" + strings.ReplaceAll(input[1:j], "\"", "\\\"") + "\""
			}
			unquoted, uerr := strconv.Unquote(raw)
			if uerr != nil {
				return "", 0, fmt.Errorf("visibility/expr: invalid string literal: %w", uerr)
			}
			return unquoted, j + 1, nil
		}
	}
	return "", 0, errors.New("visibility/expr: unterminated string literal")
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|', '<', '>':
		return true
	}
	return false
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	if ch >= '0' && ch <= '9' {
		return true
	}
	if (ch == '-' || ch == '+') && len(raw) > 1 {
		next := raw[1]
		return next >= '0' && next <= '9'
	}
	return false
}

type node interface {
	eval(ctx visibility.Context) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

type compareNode struct {
	identifier string
	op         operator
	literal    literal
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	if !ok {
		value = nil
	}

	switch n.op {
	case opEq, opNeq:
		equal, err := n.equals(value)
		if err != nil {
			return false, err
		}
		if n.op == opNeq {
			return !equal, nil
		}
		return equal, nil
	case opLt, opLte, opGt, opGte:
		return n.ordered(value)
	case opContains:
		return n.contains(value), nil
	default:
		return false, fmt.Errorf("visibility/expr: unsupported operator %q", n.op)
	}
}

func (n compareNode) equals(value any) (bool, error) {
	switch n.literal.kind {
	case litNull:
		return value == nil, nil
	case litBool:
		want := n.literal.raw == "true"
		got, _ := coerceBool(value)
		return got == want, nil
	case litNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number literal %q", n.literal.raw)
		}
		got, ok := coerceNumber(value)
		return ok && got == want, nil
	default:
		return coerceString(value) == n.literal.raw, nil
	}
}

func (n compareNode) ordered(value any) (bool, error) {
	var cmp int
	switch n.literal.kind {
	case litNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("visibility/expr: invalid number literal %q", n.literal.raw)
		}
		got, ok := coerceNumber(value)
		if !ok {
			// Missing or non-numeric answers never satisfy an ordering check.
			return false, nil
		}
		switch {
		case got < want:
			cmp = -1
		case got > want:
			cmp = 1
		}
	case litString:
		cmp = strings.Compare(coerceString(value), n.literal.raw)
	default:
		return false, fmt.Errorf("visibility/expr: operator %q needs a number or string literal", n.op)
	}

	switch n.op {
	case opLt:
		return cmp < 0, nil
	case opLte:
		return cmp <= 0, nil
	case opGt:
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}

func (n compareNode) contains(value any) bool {
	want := n.literal.raw
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(v, want)
	case []string:
		for _, item := range v {
			if item == want {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if coerceString(item) == want {
				return true
			}
		}
	}
	return false
}

type truthyNode struct{ identifier string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	if !ok {
		return false, nil
	}
	return truthy(value), nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseOr(stream *tokenStream) (node, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (node, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (node, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (node, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("visibility/expr: empty expression")
		}
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", stream.tokens[stream.pos].raw)
	}

	if op, matched := stream.consumeOperator(); matched {
		lit, err := stream.consumeLiteral()
		if err != nil {
			return nil, err
		}
		return compareNode{identifier: ident.raw, op: op, literal: lit}, nil
	}

	return truthyNode{identifier: ident.raw}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeOperator() (operator, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != tokenOperator {
		return "", false
	}
	op := s.tokens[s.pos].op
	s.pos++
	return op, true
}

func (s *tokenStream) consumeLiteral() (literal, error) {
	if s.pos >= len(s.tokens) {
		return literal{}, errors.New("visibility/expr: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString:
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		return literal{kind: litNumber, raw: tok.raw}, nil
	case tokenBool:
		return literal{kind: litBool, raw: strings.ToLower(tok.raw)}, nil
	case tokenNull:
		return literal{kind: litNull, raw: "null"}, nil
	case tokenIdentifier:
		// Bare identifiers are treated as strings to keep the evaluator forgiving.
		return literal{kind: litString, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.raw)
	}
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}

	if strings.HasPrefix(strings.ToLower(key), "extras.") {
		return lookupMap(ctx.Extras, strings.TrimSpace(key[len("extras."):]))
	}
	return lookupMap(ctx.Values, key)
}

func lookupMap(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || strings.TrimSpace(path) == "" {
		return nil, false
	}
	path = strings.TrimSpace(path)

	// Prefer exact matches for dotted keys (companion keys like "address_geo"
	// and flattened answers are stored verbatim).
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceBool(value any) (bool, bool) {
	if value == nil {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed, true
		}
		return strings.TrimSpace(v) != "", true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		return v != 0, true
	default:
		return truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
