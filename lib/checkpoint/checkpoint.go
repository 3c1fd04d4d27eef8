// Package checkpoint persists which (SKU, units) pairs have already been
// fully processed, one record per line in an append-only text log. The
// log is what makes a run resumable: its granularity is a whole SKU.
package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

type Record struct {
	Sku   string
	Units int
}

type Store struct {
	path string
}

func NewStore(path string) Store {
	return Store{path: path}
}

var (
	skuPattern   = regexp.MustCompile(`SKU:\s*(\S+)`)
	unitsPattern = regexp.MustCompile(`UN:\s*(\d+)`)
)

// Load reads every record in the log. A missing file means no work has
// been completed yet and is not an error. Lines that don't carry both a
// SKU and a unit count are skipped.
func (s Store) Load() ([]Record, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		skuMatch := skuPattern.FindStringSubmatch(line)
		unitsMatch := unitsPattern.FindStringSubmatch(line)
		if skuMatch == nil || unitsMatch == nil {
			continue
		}
		units, err := strconv.Atoi(unitsMatch[1])
		if err != nil {
			continue
		}
		records = append(records, Record{Sku: skuMatch[1], Units: units})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Append writes one record at the end of the log. Records are never
// mutated or deleted; a SKU reprocessed with a different unit count
// simply shows up again.
func (s Store) Append(rec Record) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "SKU: %s |  UN: %d\n", rec.Sku, rec.Units)
	return err
}
