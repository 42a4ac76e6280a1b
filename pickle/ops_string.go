// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

import (
	"strconv"

	"github.com/pkg/errors"
)

// pushLegacyString pushes raw as ItemString or ItemBytes depending on
// p.encoding, matching the ambiguity CPython's own "encoding" Unpickler
// option resolves for the legacy str opcodes (S, T, U) and their binary
// counterparts, which predate the Python 3 str/bytes split.
func (p *Interpreter) pushLegacyString(raw []byte) {
	if p.encoding == EncodingBytes {
		p.push(NewBytes(raw))
		return
	}
	p.push(NewString(string(raw)))
}

// opString implements the classic 'S' opcode: a repr()-quoted string
// literal on its own line.
func (p *Interpreter) opString() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	unquoted, err := unquotePythonString(string(line))
	if err != nil {
		return err
	}
	p.pushLegacyString([]byte(unquoted))
	return nil
}

func (p *Interpreter) opBinString() error {
	n, err := p.readInt32LE()
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.Wrap(ErrLengthOverflow, "BINSTRING: negative length")
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.pushLegacyString(b)
	return nil
}

func (p *Interpreter) opShortBinString() error {
	n, err := p.readUint8()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.pushLegacyString(b)
	return nil
}

// opUnicode implements the classic 'V' opcode: a raw-unicode-escape line.
func (p *Interpreter) opUnicode() error {
	line, err := p.readLine()
	if err != nil {
		return err
	}
	p.push(NewString(unescapeRawUnicode(string(line))))
	return nil
}

func (p *Interpreter) opBinUnicode() error {
	n, err := p.readUint32LE()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(NewString(string(b)))
	return nil
}

func (p *Interpreter) opShortBinUnicode() error {
	n, err := p.readUint8()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(NewString(string(b)))
	return nil
}

func (p *Interpreter) opBinUnicode8() error {
	n, err := p.readUint64LE()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(NewString(string(b)))
	return nil
}

func (p *Interpreter) opBinBytes() error {
	n, err := p.readUint32LE()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(NewBytes(b))
	return nil
}

func (p *Interpreter) opShortBinBytes() error {
	n, err := p.readUint8()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(NewBytes(b))
	return nil
}

func (p *Interpreter) opBinBytes8() error {
	n, err := p.readUint64LE()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(NewBytes(b))
	return nil
}

func (p *Interpreter) opByteArray8() error {
	n, err := p.readUint64LE()
	if err != nil {
		return err
	}
	b, err := p.readExact(int(n))
	if err != nil {
		return err
	}
	p.push(NewBytes(b))
	return nil
}

// unquotePythonString strips the surrounding quote characters off a
// classic STRING opcode's repr()'d payload and resolves backslash
// escapes. Only the small set of escapes CPython's repr() can actually
// produce for a str is handled.
func unquotePythonString(s string) (string, error) {
	if len(s) < 2 {
		return "", errors.Wrapf(ErrMalformed, "STRING: %q too short to be quoted", s)
	}
	quote := s[0]
	if quote != '\'' && quote != '"' {
		return "", errors.Wrapf(ErrMalformed, "STRING: %q not quoted", s)
	}
	if s[len(s)-1] != quote {
		return "", errors.Wrapf(ErrMalformed, "STRING: %q mismatched quotes", s)
	}
	body := s[1 : len(s)-1]

	var out []byte
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i+1 >= len(body) {
			out = append(out, body[i])
			continue
		}
		i++
		switch body[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '\\', '\'', '"':
			out = append(out, body[i])
		case 'x':
			if i+2 < len(body) {
				if v, err := strconv.ParseUint(body[i+1:i+3], 16, 8); err == nil {
					out = append(out, byte(v))
					i += 2
					continue
				}
			}
			out = append(out, '\\', body[i])
		default:
			out = append(out, '\\', body[i])
		}
	}
	return string(out), nil
}

// unescapeRawUnicode resolves \uXXXX and \UXXXXXXXX escapes in a
// raw-unicode-escape-encoded line (the format CPython's UNICODE opcode
// writes), leaving any unrecognized backslash sequence untouched.
func unescapeRawUnicode(s string) string {
	var out []rune
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			out = append(out, runes[i])
			continue
		}
		switch runes[i+1] {
		case 'u':
			if i+6 <= len(runes) {
				if v, err := strconv.ParseUint(string(runes[i+2:i+6]), 16, 32); err == nil {
					out = append(out, rune(v))
					i += 5
					continue
				}
			}
		case 'U':
			if i+10 <= len(runes) {
				if v, err := strconv.ParseUint(string(runes[i+2:i+10]), 16, 32); err == nil {
					out = append(out, rune(v))
					i += 9
					continue
				}
			}
		}
		out = append(out, runes[i])
	}
	return string(out)
}
