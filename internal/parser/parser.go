package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/conorfennell/iyek/internal/domain"
)

const (
	idPrefix          = "ID:"
	nativePrefix      = "N:"
	romanPrefix       = "R:"
	translationPrefix = "T:"
)

// ParseFile reads a deck file from the given path and extracts all words.
func ParseFile(path string) ([]domain.Word, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads deck entries from an io.Reader. An entry is a run of
// "ID:", "N:", "R:" and "T:" lines; entries end at "---", a blank line,
// or the next "ID:" line. Other lines are ignored. Field validation is
// left to the caller.
func Parse(r io.Reader) ([]domain.Word, error) {
	scanner := bufio.NewScanner(r)
	var words []domain.Word
	var current domain.Word
	started := false
	lineNo := 0

	finishWord := func() {
		if started {
			words = append(words, current)
		}
		current = domain.Word{}
		started = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "---" || strings.TrimSpace(line) == "" {
			finishWord()
			continue
		}

		switch {
		case strings.HasPrefix(line, idPrefix):
			finishWord()
			id, err := strconv.Atoi(fieldValue(line, idPrefix))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid id: %w", lineNo, err)
			}
			current.ID = id
			started = true
		case strings.HasPrefix(line, nativePrefix):
			current.Native = fieldValue(line, nativePrefix)
			started = true
		case strings.HasPrefix(line, romanPrefix):
			current.Transliteration = fieldValue(line, romanPrefix)
			started = true
		case strings.HasPrefix(line, translationPrefix):
			current.Translation = fieldValue(line, translationPrefix)
			started = true
		}
	}

	finishWord() // Finish the very last entry in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

func fieldValue(line, prefix string) string {
	return strings.TrimSpace(line[len(prefix):])
}
