package services

const MaxPageSize = 100

// Page selects a window of an ordered result set. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the requested page into a valid range
func NewPage(number, size, defaultSize int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
