package words

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed words.csv
var defaultWordsCSV string

// Word is a row of the word list: the word and how often it was drawn.
type Word struct {
	Text  string `json:"word"`
	Count int    `json:"count"`
}

// ReadCsvFile loads a "word,count" file.
func ReadCsvFile(filePath string) ([]Word, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadCsv(f)
}

// ReadCsv parses "word,count" records, skipping malformed rows. The count
// column is optional.
func ReadCsv(r io.Reader) ([]Word, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse words as CSV: %w", err)
	}

	var words []Word
	for _, record := range records {
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			log.Debug().Strs("record", record).Msg("[ReadCsv] skipping empty record")
			continue
		}

		word := Word{Text: strings.TrimSpace(record[0])}
		if len(record) > 1 {
			count, err := strconv.Atoi(strings.TrimSpace(record[1]))
			if err != nil {
				log.Warn().Strs("record", record).Msg("[ReadCsv] invalid count value, skipping")
				continue
			}
			word.Count = count
		}

		words = append(words, word)
	}

	return words, nil
}

// DefaultWords returns the built in word list.
func DefaultWords() []Word {
	words, err := ReadCsv(strings.NewReader(defaultWordsCSV))
	if err != nil {
		// the embedded file is checked by tests
		panic(err)
	}
	return words
}

func Texts(words []Word) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w.Text)
	}
	return out
}
