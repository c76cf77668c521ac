package enum

// PrintType is the printing technique of a print job
type PrintType string

const (
	PrintTypeDigital        PrintType = "digital"
	PrintTypeOffset         PrintType = "offset"
	PrintTypeLargeFormat    PrintType = "large_format"
	PrintTypeScreenPrinting PrintType = "screen_printing"
	PrintTypeOther          PrintType = "other"
)

func (t PrintType) IsValid() bool {
	switch t {
	case PrintTypeDigital, PrintTypeOffset, PrintTypeLargeFormat, PrintTypeScreenPrinting, PrintTypeOther:
		return true
	}
	return false
}

// PrintSize is the paper size of a print job
type PrintSize string

const (
	PrintSizeA4     PrintSize = "A4"
	PrintSizeA3     PrintSize = "A3"
	PrintSizeA2     PrintSize = "A2"
	PrintSizeA1     PrintSize = "A1"
	PrintSizeCustom PrintSize = "custom"
)

func (s PrintSize) IsValid() bool {
	switch s {
	case PrintSizeA4, PrintSizeA3, PrintSizeA2, PrintSizeA1, PrintSizeCustom:
		return true
	}
	return false
}
