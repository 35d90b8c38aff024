// Package sink writes a converted document to its destination: a JSON file
// or a SQL database.
package sink

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dbsmedya/mdb2json/internal/types"
)

// WriteJSON encodes doc to w. Keys keep their source order, non-ASCII text
// is written literally and each nesting level is indented by indent spaces.
func WriteJSON(w io.Writer, doc *types.Document, indent int) error {
	// MarshalJSON is called directly: json.Marshal would re-escape '<', '>'
	// and '&' in the compact output.
	compact, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", strings.Repeat(" ", indent)); err != nil {
		return fmt.Errorf("failed to indent document: %w", err)
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// WriteJSONFile creates (or truncates) path and writes doc into it.
// A failed write leaves whatever was written so far in place.
func WriteJSONFile(path string, doc *types.Document, indent int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := WriteJSON(bw, doc, indent); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
