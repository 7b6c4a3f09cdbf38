package importer

import (
	"context"
	"fmt"

	"smart-store/internal/domain"
)

// ProductAdder adds a single product to the catalog
type ProductAdder interface {
	AddProduct(ctx context.Context, input domain.NewProductInput) (*domain.Product, error)
}

// SubmitError is returned when a batch stops part way. Rows before Index
// were committed and stay committed.
type SubmitError struct {
	Index  int
	TempID string
	Added  int
	Err    error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit row %s: %v (%d rows added before failure)", e.TempID, e.Err, e.Added)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Batch is the staging list of an import awaiting submission
type Batch struct {
	Rows []domain.StagedImportRow `json:"rows"`
}

// NewBatch stages the rows of a parse result
func NewBatch(result *ParseResult) *Batch {
	rows := make([]domain.StagedImportRow, len(result.Rows))
	copy(rows, result.Rows)
	return &Batch{Rows: rows}
}

// Len returns the number of staged rows
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// AttachImage records imageURL on the row with tempID. It returns false when
// no row has that id.
func (b *Batch) AttachImage(tempID, imageURL string) bool {
	if b == nil {
		return false
	}
	for i := range b.Rows {
		if b.Rows[i].TempID == tempID {
			b.Rows[i].ImageURL = imageURL
			return true
		}
	}
	return false
}

// Find returns the staged row with tempID
func (b *Batch) Find(tempID string) (domain.StagedImportRow, bool) {
	if b == nil {
		return domain.StagedImportRow{}, false
	}
	for _, row := range b.Rows {
		if row.TempID == tempID {
			return row, true
		}
	}
	return domain.StagedImportRow{}, false
}

// Submit adds the staged rows one at a time, in order. The next add starts
// only after the previous one returned. On the first failure it stops and
// returns the number of rows added so far together with a *SubmitError;
// there is no rollback of earlier rows.
func (b *Batch) Submit(ctx context.Context, adder ProductAdder) (int, error) {
	added := 0
	for i, row := range b.Rows {
		// staged rows always carry a name and a valid price; this guards
		// batches restored from a session store
		if row.Name == "" || !ValidPrice(row.Price) {
			continue
		}

		if _, err := adder.AddProduct(ctx, domain.NewProductInput{
			Name:     row.Name,
			Price:    row.Price,
			ImageURL: row.ImageURL,
		}); err != nil {
			return added, &SubmitError{Index: i, TempID: row.TempID, Added: added, Err: err}
		}
		added++
	}
	return added, nil
}
