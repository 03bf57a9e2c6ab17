package parser

import (
	"fmt"
	"strconv"

	"rvm/isa"
)

// Parser builds a Program from the token stream produced by a Lexer. It is
// single-pass, with a two-token lookahead, the same shape as a recursive
// descent assembler: forward label references are permitted because Label
// operands stay symbolic (isa.LabelLiteral) until the encoder resolves them.
type Parser struct {
	tokens       []Token
	pos          int
	currentToken Token
	peekToken    Token
	errors       *ErrorList
	program      *Program
}

// NewParser creates a parser over input, reporting positions against filename.
func NewParser(input, filename string) *Parser {
	lexer := NewLexer(input, filename)
	tokens := lexer.TokenizeAll()

	p := &Parser{
		tokens:  tokens,
		errors:  &ErrorList{},
		program: NewProgram(),
	}
	for _, err := range lexer.Errors().Errors {
		p.errors.AddError(err)
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = Token{Type: TokenEOF, Pos: p.currentToken.Pos}
	}
}

func (p *Parser) addError(pos Position, kind ErrorKind, msg string) {
	p.errors.AddError(NewError(pos, kind, msg))
}

// skipToLineEnd discards tokens up to (and including) the next newline or
// EOF, used to recover after a malformed line so later lines still parse.
func (p *Parser) skipToLineEnd() {
	for p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
		p.nextToken()
	}
	if p.currentToken.Type == TokenNewline {
		p.nextToken()
	}
}

// Parse consumes the whole token stream and returns the resulting Program.
// Parse errors are collected, not fatal to the whole file; Parse returns a
// non-nil error (the accumulated ErrorList) if any line failed.
func (p *Parser) Parse() (*Program, error) {
	for p.currentToken.Type != TokenEOF {
		switch p.currentToken.Type {
		case TokenNewline, TokenComment:
			p.nextToken()
			continue
		case TokenDot:
			// A stray '.' outside "section ." is a syntax error.
			p.addError(p.currentToken.Pos, ErrorSyntax, "unexpected '.'")
			p.skipToLineEnd()
			continue
		}

		p.parseLine()
	}

	if p.errors.HasErrors() {
		return p.program, p.errors
	}
	return p.program, nil
}

// parseLine consumes one logical source line: an optional label/
// label-with-literal/directive, followed by an optional expression.
func (p *Parser) parseLine() {
	if p.currentToken.Type == TokenIdentifier && p.currentToken.Literal == "section" && p.peekToken.Type == TokenDot {
		p.parseDirective()
		p.skipToLineEnd()
		return
	}

	if p.currentToken.Type == TokenIdentifier && p.peekToken.Type == TokenColon {
		p.parseLabel()
		// A label may be followed by an expression on the same line
		// ("loop: add ra, rb"); fall through to check for one.
		if p.currentToken.Type == TokenNewline || p.currentToken.Type == TokenEOF || p.currentToken.Type == TokenComment {
			if p.currentToken.Type == TokenNewline {
				p.nextToken()
			}
			return
		}
	}

	if p.currentToken.Type == TokenIdentifier {
		p.parseExpression()
	} else if p.currentToken.Type != TokenComment && p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
		p.addError(p.currentToken.Pos, ErrorSyntax, fmt.Sprintf("unexpected token %s", p.currentToken.Type))
	}

	p.skipToLineEnd()
}

// parseDirective consumes `section '.' identifier` and records a hard
// failure: assembler sections are not implemented, so silently accepting
// the directive would shift every later label's address.
func (p *Parser) parseDirective() {
	pos := p.currentToken.Pos
	p.nextToken() // consume "section"
	p.nextToken() // consume "."
	name := ""
	if p.currentToken.Type == TokenIdentifier {
		name = p.currentToken.Literal
		p.nextToken()
	}
	p.addError(pos, ErrorUnsupportedDirective,
		fmt.Sprintf("assembler sections are not implemented (section .%s)", name))
}

// parseLabel consumes `identifier ':'`, optionally followed by a literal
// value, and records the binding in the program's label table.
func (p *Parser) parseLabel() {
	pos := p.currentToken.Pos
	name := p.currentToken.Literal
	p.nextToken() // consume identifier
	p.nextToken() // consume ':'

	var value isa.LabelValue
	switch p.currentToken.Type {
	case TokenString:
		value = isa.Literal(ProcessEscapeSequences(p.currentToken.Literal))
		p.nextToken()
	case TokenNumber:
		n, err := parseNumberLiteral(p.currentToken.Literal)
		if err != nil {
			p.addError(p.currentToken.Pos, ErrorInvalidOperand, err.Error())
			p.nextToken()
			return
		}
		value = isa.Address(uint32(n))
		p.nextToken()
	default:
		value = isa.Address(uint32(len(p.program.Instructions)))
	}

	if !p.program.addLabel(name, value) {
		p.addError(pos, ErrorDuplicateLabel, fmt.Sprintf("label %q is already defined", name))
	}
}

// parseExpression consumes `opcode (operand (',' operand)?)?` and appends
// the resulting Instruction to the program.
func (p *Parser) parseExpression() {
	pos := p.currentToken.Pos
	mnemonic := p.currentToken.Literal
	p.nextToken()

	var lhs, rhs isa.Operand
	if p.atOperandStart() {
		lhs = p.parseOperand()
		if p.currentToken.Type == TokenComma {
			p.nextToken()
			rhs = p.parseOperand()
		}
	}

	op, known := isa.LookupOpcode(mnemonic)
	inst := isa.Instruction{Lhs: lhs, Rhs: rhs}
	if known {
		inst.Op = op
	} else {
		inst.Op = isa.Plugin
		inst.PluginRef = isa.Literal(mnemonic)
		p.program.notePlugin(mnemonic)
	}

	expected := op.OperandCount()
	if known && inst.OperandCount() != expected {
		p.addError(pos, ErrorInvalidOperand,
			fmt.Sprintf("%s expects %d operand(s), got %d", mnemonic, expected, inst.OperandCount()))
	}

	p.program.addInstruction(inst)
}

func (p *Parser) atOperandStart() bool {
	switch p.currentToken.Type {
	case TokenIdentifier, TokenNumber, TokenLBracket:
		return true
	default:
		return false
	}
}

// parseOperand consumes a single operand: an identifier/number, or a
// bracketed offset `'[' base (('+'|'-') disp?)? ']'`.
func (p *Parser) parseOperand() isa.Operand {
	switch p.currentToken.Type {
	case TokenLBracket:
		return p.parseOffsetOperand()

	case TokenNumber:
		n, err := parseNumberLiteral(p.currentToken.Literal)
		pos := p.currentToken.Pos
		p.nextToken()
		if err != nil {
			p.addError(pos, ErrorInvalidOperand, err.Error())
			return isa.NoneOperand
		}
		return isa.NumberOperand(n)

	case TokenIdentifier:
		name := p.currentToken.Literal
		p.nextToken()
		if reg, ok := isa.LookupRegister(name); ok {
			return isa.RegisterOperand(reg)
		}
		return isa.LabelOperand(isa.Literal(name))

	default:
		p.addError(p.currentToken.Pos, ErrorInvalidOperand,
			fmt.Sprintf("expected operand, got %s", p.currentToken.Type))
		return isa.NoneOperand
	}
}

func (p *Parser) parseOffsetOperand() isa.Operand {
	pos := p.currentToken.Pos
	p.nextToken() // consume '['

	var offset isa.Offset
	if p.currentToken.Type == TokenIdentifier {
		if reg, ok := isa.LookupRegister(p.currentToken.Literal); ok {
			offset.Base = reg
		} else {
			p.addError(p.currentToken.Pos, ErrorInvalidOperand,
				fmt.Sprintf("%q is not a register", p.currentToken.Literal))
		}
		p.nextToken()
	} else {
		p.addError(pos, ErrorInvalidOperand, "expected base register after '['")
	}

	if p.currentToken.Type == TokenPlus || p.currentToken.Type == TokenMinus {
		if p.currentToken.Type == TokenPlus {
			offset.Op = '+'
		} else {
			offset.Op = '-'
		}
		p.nextToken()
		if p.currentToken.Type == TokenNumber {
			n, err := parseNumberLiteral(p.currentToken.Literal)
			if err != nil {
				p.addError(p.currentToken.Pos, ErrorInvalidOperand, err.Error())
			} else {
				offset.Disp = uint32(n)
				offset.HasDisp = true
			}
			p.nextToken()
		}
	}

	if p.currentToken.Type == TokenRBracket {
		p.nextToken()
	} else {
		p.addError(p.currentToken.Pos, ErrorInvalidOperand, "expected ']' to close offset operand")
	}

	return isa.OffsetOperand(offset)
}

// parseNumberLiteral parses a lexed NUMBER literal, decimal or 0x-prefixed
// hex, into an unsigned 64-bit value.
func parseNumberLiteral(lit string) (uint64, error) {
	if len(lit) > 1 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		n, err := strconv.ParseUint(lit[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex literal %q: %w", lit, err)
		}
		return n, nil
	}
	n, err := strconv.ParseUint(lit, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric literal %q: %w", lit, err)
	}
	return n, nil
}
