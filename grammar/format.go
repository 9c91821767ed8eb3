package grammar

import (
	"strconv"
	"strings"
)

// Format renders e in textual grammar syntax.
func Format(e Expression) string {
	sb := &strings.Builder{}
	format(sb, e)
	return sb.String()
}

// FormatRule renders r as a rule block.
func FormatRule(r *Rule) string {
	sb := &strings.Builder{}
	sb.WriteString("rule ")
	sb.WriteString(r.Name)
	if len(r.Params) > 0 {
		sb.WriteString("[%")
		sb.WriteString(strings.Join(r.Params, ", %"))
		sb.WriteString("]")
	}
	sb.WriteString("\n  ")
	format(sb, r.Body)
	sb.WriteString("\nend\n")
	return sb.String()
}

func format(sb *strings.Builder, e Expression) {
	switch n := e.(type) {
	case nil:
	case *Sequence:
		formatList(sb, n.Children, " ", true)
	case *Choice:
		formatList(sb, n.Children, " / ", true)
	case *Repetition:
		formatOperand(sb, n.Child)
		if n.AtLeastOnce {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('*')
		}
		if n.Glue != nil {
			sb.WriteByte('[')
			format(sb, n.Glue)
			sb.WriteByte(']')
		}
	case *Until:
		formatOperand(sb, n.Child)
		sb.WriteString("*->")
		formatOperand(sb, n.Terminator)
	case *PositiveLookahead:
		sb.WriteByte('&')
		formatOperand(sb, n.Child)
	case *NegativeLookahead:
		sb.WriteByte('!')
		formatOperand(sb, n.Child)
	case *RuleCall:
		sb.WriteString(n.Name)
		if len(n.Args) > 0 {
			sb.WriteByte('[')
			formatList(sb, n.Args, ", ", false)
			sb.WriteByte(']')
		}
	case *Parenthesized:
		sb.WriteByte('(')
		format(sb, n.Child)
		sb.WriteByte(')')
	case *Label:
		switch n.Kind {
		case AtLabel:
			sb.WriteString("@:")
		case LocalLabel:
			sb.WriteString("%" + n.Name + ":")
		default:
			sb.WriteString(n.Name + ":")
		}
		formatOperand(sb, n.Child)
	case *LocalValueRef:
		sb.WriteString("%" + n.Name)
	case *StringTerminal:
		sb.WriteString(QuoteString(string(n.Chars)))
		if n.Fold {
			sb.WriteByte('i')
		}
	case *CharacterClass:
		sb.WriteByte('[')
		if n.Inverted {
			sb.WriteByte('^')
		}
		for _, s := range n.Selections {
			sb.WriteString(FormatSelection(s))
		}
		sb.WriteByte(']')
	case *AnyCharacter:
		sb.WriteByte('.')
	case *ObjectCreator:
		if n.Child != nil {
			formatOperand(sb, n.Child)
			sb.WriteByte(' ')
		}
		sb.WriteString("<" + n.ClassName)
		if n.Data != nil {
			sb.WriteByte(' ')
			format(sb, n.Data)
		}
		sb.WriteByte('>')
	case *ValueCreator:
		formatOperand(sb, n.Child)
		sb.WriteString(" {" + n.Code + "}")
	case *StringLiteral:
		sb.WriteString(QuoteString(n.Value))
	case *BooleanLiteral:
		sb.WriteString("$" + strconv.FormatBool(n.Value))
	case *HashLiteral:
		sb.WriteString("{ ")
		for i, entry := range n.Entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(entry.Key + ": ")
			format(sb, entry.Value)
		}
		sb.WriteString(" }")
	case *ArrayLiteral:
		sb.WriteByte('[')
		formatList(sb, n.Entries, ", ", false)
		sb.WriteByte(']')
	case *LabelDataRef:
		sb.WriteString("@" + n.Name)
	case *ErrorFunction:
		sb.WriteString("$error[" + QuoteString(n.Message) + "]")
	case *MatchFunction:
		sb.WriteString("$match[")
		format(sb, n.Child)
		sb.WriteByte(']')
	case *EnterMode:
		sb.WriteString("$enter_mode[" + QuoteString(n.Mode) + ", ")
		format(sb, n.Child)
		sb.WriteByte(']')
	case *LeaveMode:
		sb.WriteString("$leave_mode[" + QuoteString(n.Mode) + ", ")
		format(sb, n.Child)
		sb.WriteByte(']')
	case *InMode:
		sb.WriteString("$in_mode[" + QuoteString(n.Mode) + "]")
	case *Factored:
		sb.WriteString("%" + n.Name + ":")
		formatOperand(sb, n.Primary)
		sb.WriteString(" (")
		format(sb, n.Choice)
		sb.WriteByte(')')
	case *Replay:
		sb.WriteString("%" + n.Name)
	case *Rule:
		sb.WriteString(FormatRule(n))
	}
}

func formatList(sb *strings.Builder, es []Expression, sep string, group bool) {
	for i, c := range es {
		if i > 0 {
			sb.WriteString(sep)
		}
		if group {
			formatOperand(sb, c)
		} else {
			format(sb, c)
		}
	}
}

func formatOperand(sb *strings.Builder, e Expression) {
	switch e.(type) {
	case *Sequence, *Choice, *ObjectCreator, *ValueCreator, *Factored:
		sb.WriteByte('(')
		format(sb, e)
		sb.WriteByte(')')
	default:
		format(sb, e)
	}
}

// FormatSelection renders a character class selection: "b" for a single character, "2-5" for a range.
func FormatSelection(s Selection) string {
	if s.From == s.To {
		return escapeClassChar(s.From)
	}
	return escapeClassChar(s.From) + "-" + escapeClassChar(s.To)
}

func escapeClassChar(c byte) string {
	switch c {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\\', ']', '-', '^':
		return `\` + string(rune(c))
	}
	if c < 0x20 || c >= 0x7f {
		return `\x` + strconv.FormatUint(uint64(c)|0x100, 16)[1:]
	}
	return string(rune(c))
}

// QuoteString renders s as a single-quoted grammar string.
func QuoteString(s string) string {
	sb := &strings.Builder{}
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				sb.WriteString(`\x` + strconv.FormatUint(uint64(c)|0x100, 16)[1:])
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// String returns raw selection text used in failure expectations.
func (s Selection) String() string {
	if s.From == s.To {
		return string([]byte{s.From})
	}
	return string([]byte{s.From, '-', s.To})
}
