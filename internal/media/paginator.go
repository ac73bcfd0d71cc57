package media

import "context"

// Paginator fixes the page size over a Source. It is stateless: the caller
// carries the cursor between calls and is responsible for not overlapping
// NextPage calls on the same cursor chain (busy flag plus hasNextPage
// check). Re-issuing NextPage with the same cursor re-reads the same page,
// so a failed classification pass can be retried without skipping assets.
type Paginator struct {
	src      Source
	pageSize int
}

func NewPaginator(src Source, pageSize int) *Paginator {
	return &Paginator{src: src, pageSize: pageSize}
}

// NextPage returns the page after cursor ("" for the first page).
func (p *Paginator) NextPage(ctx context.Context, cursor string) (Page, error) {
	return p.src.GetPage(ctx, cursor, p.pageSize)
}
