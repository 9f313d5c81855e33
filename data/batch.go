package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	BatchExt        = ".csv"
	BatchTimeLayout = "20060102_150405"
	// CreatedLayout is how created_utc is written to batch files.
	CreatedLayout = "2006-01-02 15:04:05"
)

const (
	colTitle       = "title"
	colScore       = "score"
	colURL         = "url"
	colNumComments = "num_comments"
	colCreatedUTC  = "created_utc"
	colID          = "id"
)

var batchHeader = []string{colTitle, colScore, colURL, colNumComments, colCreatedUTC, colID}

// BatchName returns <prefix>_<YYYYMMDD_HHMMSS>.csv for the collection time t.
func BatchName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s%s", prefix, t.UTC().Format(BatchTimeLayout), BatchExt)
}

// ObjectKey places a batch file name under the storage directory.
func ObjectKey(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}

func IsBatchKey(key string) bool {
	return strings.HasSuffix(key, BatchExt)
}

func WriteBatch(w io.Writer, posts []Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(batchHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range posts {
		record := []string{
			p.Title,
			strconv.Itoa(p.Score),
			p.URL,
			strconv.Itoa(p.NumComments),
			p.CreatedUTC.UTC().Format(CreatedLayout),
			p.ID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write post %s: %w", p.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadBatch parses a batch file. Columns are located by header name so files
// with a different column order still load. Any malformed row fails the read.
func ReadBatch(r io.Reader) ([]Post, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range batchHeader {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("read header: missing column %q", col)
		}
	}

	posts := make([]Post, 0, 512)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(col string) (string, error) {
			i := idx[col]
			if i >= len(record) {
				return "", fmt.Errorf("line %d: missing %s", line, col)
			}
			return record[i], nil
		}

		var p Post
		var raw string
		if p.ID, err = field(colID); err != nil {
			return nil, err
		}
		if p.Title, err = field(colTitle); err != nil {
			return nil, err
		}
		if p.URL, err = field(colURL); err != nil {
			return nil, err
		}
		if raw, err = field(colScore); err != nil {
			return nil, err
		}
		if p.Score, err = parseCount(raw); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, colScore, err)
		}
		if raw, err = field(colNumComments); err != nil {
			return nil, err
		}
		if p.NumComments, err = parseCount(raw); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, colNumComments, err)
		}
		if raw, err = field(colCreatedUTC); err != nil {
			return nil, err
		}
		if p.CreatedUTC, err = ParseCreated(raw); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, colCreatedUTC, err)
		}

		posts = append(posts, p)
	}

	return posts, nil
}

// parseCount accepts integers and integral floats ("12.0"), which some
// spreadsheet tools emit for numeric columns. Fractions, NaN and infinities
// are rejected.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// ParseCreated accepts the batch layout, RFC3339 and unix seconds.
func ParseCreated(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(CreatedLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(secs), 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
