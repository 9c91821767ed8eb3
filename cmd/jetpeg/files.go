package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ava12/jetpeg/source"
)

const maxFileSize = 1 << 20

const stdinName = "-"

// loadFile reads a file, stdinName reads in.
func loadFile(name string, in io.Reader) ([]byte, error) {
	if name == stdinName {
		content, e := io.ReadAll(io.LimitReader(in, maxFileSize+1))
		if e != nil {
			return nil, fail(errFile, e)
		}
		if len(content) > maxFileSize {
			return nil, failf(errFile, "read %s: input too large", name)
		}
		return content, nil
	}

	file, e := os.Open(name)
	if e != nil {
		return nil, fail(errFile, e)
	}

	defer file.Close()

	stat, e := file.Stat()
	if e != nil {
		return nil, fail(errFile, e)
	}

	size := stat.Size()
	if size > maxFileSize {
		return nil, failf(errFile, "stat %s: invalid size (%d bytes)", name, size)
	}

	content, e := io.ReadAll(file)
	if e != nil {
		return nil, fail(errFile, e)
	}

	return content, nil
}

func normalizeNls(content []byte) []byte {
	if bytes.IndexByte(content, '\r') < 0 {
		return content
	}

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}

func makeSource(name string, content []byte) (*source.Source, error) {
	if !utf8.Valid(content) {
		return nil, failf(errContent, "check %s: not a valid UTF-8 encoded text", name)
	}

	return source.New(name, normalizeNls(content)), nil
}

type lineEntry struct {
	firstPos, lastPos int
}

// makeSources splits content into samples if multiSample is set or content starts with separator.
func makeSources(name string, content []byte, multiSample bool, separator []byte) ([]*source.Source, error) {
	if len(separator) != 0 && bytes.HasPrefix(content, separator) {
		multiSample = true
	}

	if !multiSample {
		src, e := makeSource(name, content)
		if e != nil {
			return nil, e
		}
		return []*source.Source{src}, nil
	}

	if !utf8.Valid(content) {
		return nil, failf(errContent, "check %s: not a valid UTF-8 encoded text", name)
	}

	content = normalizeNls(content)
	lines := contentLines(content)
	if len(lines) == 0 {
		return nil, nil
	}

	var result []*source.Source

	separator = linePrefix(content[lines[0].firstPos:lines[0].lastPos])
	sampleIndex := 1
	lineIndex := 1
	for lineIndex < len(lines) {
		sample, lineCnt := sourceSample(content, lines[lineIndex:], separator)
		sourceName := fmt.Sprintf("%s, sample #%d (lines %d-%d)",
			name, sampleIndex, lineIndex+1, lineIndex+lineCnt)
		result = append(result, source.New(sourceName, sample))
		sampleIndex++
		lineIndex += lineCnt + 1
	}

	return result, nil
}

func contentLines(content []byte) []lineEntry {
	var result []lineEntry
	pos := 0
	for pos < len(content) {
		newPos := bytes.IndexByte(content[pos:], '\n')
		if newPos < 0 {
			result = append(result, lineEntry{pos, len(content)})
			break
		}

		result = append(result, lineEntry{pos, pos + newPos})
		pos += newPos + 1
	}
	return result
}

func linePrefix(line []byte) []byte {
	for i, b := range line {
		if b <= ' ' {
			return line[:i]
		}
	}

	return line
}

// sourceSample returns the sample starting at the first of lines and the number of its lines.
// The line break preceding the separator is not a part of the sample.
func sourceSample(content []byte, lines []lineEntry, separator []byte) ([]byte, int) {
	if len(lines) == 0 {
		return nil, 0
	}

	for i, entry := range lines {
		if bytes.HasPrefix(content[entry.firstPos:entry.lastPos], separator) {
			if i == 0 {
				return content[entry.firstPos:entry.firstPos], 0
			}
			return content[lines[0].firstPos:lines[i-1].lastPos], i
		}
	}

	return content[lines[0].firstPos:lines[len(lines)-1].lastPos], len(lines)
}

// expandInputs resolves input patterns to file names.
// A pattern without glob metacharacters is kept as is, so a missing file is reported on load.
func expandInputs(patterns []string) ([]string, error) {
	var res []string
	for _, pattern := range patterns {
		if pattern == stdinName || !hasMeta(pattern) {
			res = append(res, pattern)
			continue
		}

		if !doublestar.ValidatePattern(pattern) {
			return nil, failf(errUsage, "invalid input pattern: %s", pattern)
		}
		names, e := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if e != nil {
			return nil, fail(errFile, e)
		}
		if len(names) == 0 {
			return nil, failf(errFile, "no files match %s", pattern)
		}
		res = append(res, names...)
	}
	return res, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
