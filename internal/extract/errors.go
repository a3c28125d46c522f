package extract

import "errors"

// ErrUnsupportedFormat is reported before any extraction work when the upload
// extension is not one of the supported families.
var ErrUnsupportedFormat = errors.New("only Word (.docx) or Excel (.xlsx, .xls) files are supported")

// ErrEmptyContent means extraction succeeded structurally but yielded no
// usable text. The generation service must never be called in this case.
var ErrEmptyContent = errors.New("no text found in the uploaded file")
