package format

type (
	CurveClass      uint8
	EntryKind       uint8
	BlockLayout     uint8
	CompressionType uint8
)

const (
	ClassUV           CurveClass = 0x1 // ClassUV represents UV absorbance curves.
	ClassConductivity CurveClass = 0x2 // ClassConductivity represents conductivity curves.
	ClassPH           CurveClass = 0x3 // ClassPH represents pH curves.
	ClassPressure     CurveClass = 0x4 // ClassPressure represents pressure curves.
	ClassGradient     CurveClass = 0x5 // ClassGradient represents gradient/concentration curves.
	ClassFraction     CurveClass = 0x6 // ClassFraction represents fraction event lists.
	ClassOther        CurveClass = 0x7 // ClassOther represents unrecognized curve names.

	KindMetadataXML   EntryKind = 0x1 // KindMetadataXML marks XML descriptor entries.
	KindBinaryBlock   EntryKind = 0x2 // KindBinaryBlock marks raw data-block entries.
	KindNestedArchive EntryKind = 0x3 // KindNestedArchive marks embedded sub-containers.

	LayoutImplicit    BlockLayout = 0x1 // LayoutImplicit derives x from n * sample interval.
	LayoutTimestamped BlockLayout = 0x2 // LayoutTimestamped reads a leading x field per record.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CurveClass) String() string {
	switch c {
	case ClassUV:
		return "UV"
	case ClassConductivity:
		return "Conductivity"
	case ClassPH:
		return "pH"
	case ClassPressure:
		return "Pressure"
	case ClassGradient:
		return "Gradient"
	case ClassFraction:
		return "Fraction"
	case ClassOther:
		return "Other"
	default:
		return "Unknown"
	}
}

func (k EntryKind) String() string {
	switch k {
	case KindMetadataXML:
		return "MetadataXML"
	case KindBinaryBlock:
		return "BinaryBlock"
	case KindNestedArchive:
		return "NestedArchive"
	default:
		return "Unknown"
	}
}

func (l BlockLayout) String() string {
	switch l {
	case LayoutImplicit:
		return "Implicit"
	case LayoutTimestamped:
		return "Timestamped"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
