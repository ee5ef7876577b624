package document

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/turtacn/LienPilot/pkg/errors"
	"github.com/turtacn/LienPilot/pkg/types/common"
)

// ContentTypePDF is the media type of rendered documents.
const ContentTypePDF = "application/pdf"

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// Filename builds NOI_<invoice>_<customer>_<YYYY-MM-DD>.pdf. Every
// non-alphanumeric character of the customer name becomes an underscore;
// path separators in the invoice number are replaced too.
func Filename(invoiceNumber, customerName string, date time.Time) string {
	inv := strings.NewReplacer("/", "_", `\`, "_", " ", "_").Replace(strings.TrimSpace(invoiceNumber))
	cust := nonAlnum.ReplaceAllString(strings.TrimSpace(customerName), "_")
	return fmt.Sprintf("NOI_%s_%s_%s.pdf", inv, cust, common.FormatDate(date))
}

// Document is a rendered notice.
type Document struct {
	Filename    string
	ContentType string
	Layout      *Layout
	data        []byte
}

// Bytes returns a copy of the PDF bytes.
func (d *Document) Bytes() []byte {
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

// Base64 returns the PDF as standard base64 text.
func (d *Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.data)
}

func (d *Document) Size() int { return len(d.data) }

func (d *Document) PageCount() int {
	if d.Layout == nil {
		return 0
	}
	return len(d.Layout.Pages)
}

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// Save writes the document under dir using its Filename and returns the path.
func (d *Document) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "create output directory")
	}
	path := filepath.Join(dir, d.Filename)
	if err := os.WriteFile(path, d.data, 0o644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "write document").WithDetail(path)
	}
	return path, nil
}

//Personal.AI order the ending
