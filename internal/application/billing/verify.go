package billing

import (
	"bytes"
	"fmt"

	"github.com/jhoicas/facturas-api/internal/domain"
)

const (
	// MinPDFSize por debajo de este tamaño el documento se considera corrupto.
	MinPDFSize = 1000
	// trailerWindow bytes finales donde se busca el marcador %%EOF.
	trailerWindow = 1024
)

var (
	pdfMagic   = []byte("%PDF")
	pdfTrailer = []byte("%%EOF")
)

// VerifyPDF valida el buffer generado. Un marcador %%EOF ausente no es fatal:
// se devuelve como advertencia y el documento se entrega igualmente.
func VerifyPDF(buf []byte) (warnings []string, err error) {
	switch {
	case len(buf) == 0:
		return nil, fmt.Errorf("%w: PDF vacío", domain.ErrInvalidDocument)
	case len(buf) < MinPDFSize:
		return nil, fmt.Errorf("%w: PDF corrupto (%d bytes)", domain.ErrInvalidDocument, len(buf))
	case !bytes.HasPrefix(buf, pdfMagic):
		return nil, fmt.Errorf("%w: formato inválido, cabecera %q", domain.ErrInvalidDocument, buf[:len(pdfMagic)])
	}
	tail := buf
	if len(tail) > trailerWindow {
		tail = tail[len(tail)-trailerWindow:]
	}
	if !bytes.Contains(tail, pdfTrailer) {
		warnings = append(warnings, "marcador %%EOF ausente al final del PDF")
	}
	return warnings, nil
}
