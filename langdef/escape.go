package langdef

import (
	"strconv"
	"unicode/utf8"

	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/lexer"
)

type escapeCharEntry struct {
	substitute, hexLen byte
}

var escapeCharMap = map[byte]escapeCharEntry{
	'\\': {'\\', 0},
	'\'': {'\'', 0},
	'"':  {'"', 0},
	'n':  {'\n', 0},
	'r':  {'\r', 0},
	't':  {'\t', 0},
	'0':  {0, 0},
	'x':  {0, 2},
	'u':  {0, 4},
	'U':  {0, 8},
}

var classEscapeMap = map[byte]byte{
	'\\': '\\',
	']':  ']',
	'[':  '[',
	'-':  '-',
	'^':  '^',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'0':  0,
}

// unquoteString returns content of a string token with escape sequences replaced.
// fold is true if the string has case folding suffix.
func unquoteString(token *lexer.Token) (chars []byte, fold bool, e error) {
	text := token.Text()
	if text[len(text)-1] == 'i' {
		fold = true
		text = text[:len(text)-1]
	}
	content := text[1 : len(text)-1]

	chars = make([]byte, 0, len(content))
	for i := 0; i < len(content); {
		if content[i] != '\\' {
			chars = append(chars, content[i])
			i++
			continue
		}

		entry, valid := escapeCharMap[content[i+1]]
		if !valid {
			return nil, false, invalidEscapeError(token, content[i:i+2])
		}

		if entry.hexLen == 0 {
			chars = append(chars, entry.substitute)
			i += 2
			continue
		}

		end := i + 2 + int(entry.hexLen)
		if end > len(content) {
			return nil, false, invalidEscapeError(token, content[i:])
		}

		code, err := strconv.ParseUint(content[i+2:end], 16, 32)
		if err != nil {
			return nil, false, invalidEscapeError(token, content[i:end])
		}

		if entry.hexLen == 2 {
			chars = append(chars, byte(code))
		} else {
			if !utf8.ValidRune(rune(code)) {
				return nil, false, invalidEscapeError(token, content[i:end])
			}
			chars = utf8.AppendRune(chars, rune(code))
		}
		i = end
	}

	return chars, fold, nil
}

// readClassChar returns the byte at position i of class content and the position after it.
func readClassChar(token *lexer.Token, content string, i int) (byte, int, error) {
	if content[i] != '\\' {
		return content[i], i + 1, nil
	}

	if i+1 >= len(content) {
		return 0, i, invalidEscapeError(token, content[i:])
	}

	if content[i+1] == 'x' {
		if i+4 > len(content) {
			return 0, i, invalidEscapeError(token, content[i:])
		}

		code, err := strconv.ParseUint(content[i+2:i+4], 16, 8)
		if err != nil {
			return 0, i, invalidEscapeError(token, content[i:i+4])
		}

		return byte(code), i + 4, nil
	}

	c, valid := classEscapeMap[content[i+1]]
	if !valid {
		return 0, i, invalidEscapeError(token, content[i:i+2])
	}

	return c, i + 2, nil
}

func parseClass(token *lexer.Token) (*grammar.CharacterClass, error) {
	text := token.Text()
	content := text[1 : len(text)-1]
	res := grammar.SetPos(&grammar.CharacterClass{}, token.Pos())
	if content != "" && content[0] == '^' {
		res.Inverted = true
		content = content[1:]
	}

	for i := 0; i < len(content); {
		from, next, e := readClassChar(token, content, i)
		if e != nil {
			return nil, e
		}

		to := from
		if next+1 < len(content) && content[next] == '-' {
			to, next, e = readClassChar(token, content, next+1)
			if e != nil {
				return nil, e
			}

			if to < from {
				return nil, invalidRangeError(token, from, to)
			}
		}

		res.Selections = append(res.Selections, grammar.Selection{From: from, To: to})
		i = next
	}

	return res, nil
}
