package forest

import (
	"encoding/gob"
	"io"
)

// Save serializes the fitted Classifier using encoding/gob to an io.Writer.
// The trees, the training schema, the OOB estimates and the importance
// contributions are kept, the fit options that only matter while growing
// are not.
func (f *Classifier) Save(w io.Writer) error {
	e := gob.NewEncoder(w)
	return e.Encode(f)
}

// Load deserializes the Classifier using encoding/gob from an io.Reader.
func (f *Classifier) Load(r io.Reader) error {
	d := gob.NewDecoder(r)
	return d.Decode(f)
}

// SetNumWorkers changes the number of goroutines used by Predict, for
// instance on a classifier restored with Load.
func (f *Classifier) SetNumWorkers(n int) { f.nWorkers = n }
