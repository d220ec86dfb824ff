package model

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	// MaxPageNumber bounds the skip a client can ask the store for.
	MaxPageNumber   = 10000
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NormalizePage clamps page and size the same way for every listing endpoint.
func NormalizePage(page, size int) Page {
	switch {
	case page <= 0:
		page = 1
	case page > MaxPageNumber:
		page = MaxPageNumber
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: page, Size: size}
}

func (p Page) Offset() int64 {
	return int64(p.Number-1) * int64(p.Size)
}
