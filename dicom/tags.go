package dicom

import (
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Labels of the fixed tag set, as they appear in decoded tag maps.
const (
	LabelObjectName        = "Object Name"
	LabelObjectID          = "Object ID"
	LabelProductionDate    = "Production Date"
	LabelModality          = "Modality"
	LabelManufacturer      = "Manufacturer"
	LabelStudyDescription  = "Study Description"
	LabelSeriesDescription = "Series Description"
	LabelObjectBirthDate   = "Object Birth Date"
	LabelObjectSex         = "Object Sex"

	LabelXRaySource         = "X-Ray Source"
	LabelDetectorType       = "Detector Type"
	LabelVoltage            = "Voltage (kV)"
	LabelExposureTime       = "Exposure Time (ms)"
	LabelObjectDiameter     = "Object Diameter (mm)"
	LabelObjectMaterial     = "Object Material"
	LabelSeamNumber         = "Seam Number"
	LabelObjectThickness    = "Object Thickness (mm)"
	LabelInspectionDate     = "Inspection Date"
	LabelInspectionTime     = "Inspection Time"
	LabelInspectionLocation = "Inspection Location"
	LabelInspector1         = "Inspector 1"
	LabelInspector2         = "Inspector 2"

	LabelRows                      = "Rows"
	LabelColumns                   = "Columns"
	LabelBitsAllocated             = "Bits Allocated"
	LabelBitsStored                = "Bits Stored"
	LabelHighBit                   = "High Bit"
	LabelPhotometricInterpretation = "Photometric Interpretation"
)

// fixedTag binds a label to the attribute it is stored in.
type fixedTag struct {
	Label string
	Tag   tag.Tag
	VR    string

	// Numeric values are carried as decimal integers; a value that does not
	// parse is written as 0.
	Numeric bool

	// Optional tags are only put in a decoded map when the file has them.
	// All others are always present, empty (or "0") when missing.
	Optional bool
}

var fixedTags = []fixedTag{
	{Label: LabelObjectName, Tag: tag.Tag{Group: 0x0010, Element: 0x0010}, VR: "PN", Optional: true},
	{Label: LabelObjectID, Tag: tag.Tag{Group: 0x0010, Element: 0x0020}, VR: "LO", Optional: true},
	{Label: LabelProductionDate, Tag: tag.Tag{Group: 0x0008, Element: 0x0020}, VR: "DA", Optional: true},
	{Label: LabelModality, Tag: tag.Tag{Group: 0x0008, Element: 0x0060}, VR: "CS", Optional: true},
	{Label: LabelManufacturer, Tag: tag.Tag{Group: 0x0008, Element: 0x0070}, VR: "LO", Optional: true},
	{Label: LabelStudyDescription, Tag: tag.Tag{Group: 0x0008, Element: 0x1030}, VR: "LO", Optional: true},
	{Label: LabelSeriesDescription, Tag: tag.Tag{Group: 0x0008, Element: 0x103E}, VR: "LO", Optional: true},
	{Label: LabelObjectBirthDate, Tag: tag.Tag{Group: 0x0010, Element: 0x0030}, VR: "DA", Optional: true},
	{Label: LabelObjectSex, Tag: tag.Tag{Group: 0x0010, Element: 0x0040}, VR: "CS", Optional: true},

	{Label: LabelXRaySource, Tag: tag.Tag{Group: 0x0018, Element: 0x7040}, VR: "LO"},
	{Label: LabelDetectorType, Tag: tag.Tag{Group: 0x0018, Element: 0x7004}, VR: "CS"},
	{Label: LabelVoltage, Tag: tag.Tag{Group: 0x0018, Element: 0x0060}, VR: "DS", Numeric: true},
	{Label: LabelExposureTime, Tag: tag.Tag{Group: 0x0018, Element: 0x1150}, VR: "IS", Numeric: true},
	{Label: LabelObjectDiameter, Tag: tag.Tag{Group: 0x0018, Element: 0x9116}, VR: "LO"},
	{Label: LabelObjectMaterial, Tag: tag.Tag{Group: 0x0018, Element: 0x9117}, VR: "LO"},
	{Label: LabelSeamNumber, Tag: tag.Tag{Group: 0x0018, Element: 0x9118}, VR: "LO"},
	{Label: LabelObjectThickness, Tag: tag.Tag{Group: 0x0018, Element: 0x9119}, VR: "LO"},
	{Label: LabelInspectionDate, Tag: tag.Tag{Group: 0x0018, Element: 0x9121}, VR: "DA"},
	{Label: LabelInspectionTime, Tag: tag.Tag{Group: 0x0018, Element: 0x9122}, VR: "TM"},
	{Label: LabelInspectionLocation, Tag: tag.Tag{Group: 0x0018, Element: 0x9123}, VR: "LO"},
	{Label: LabelInspector1, Tag: tag.Tag{Group: 0x0008, Element: 0x0090}, VR: "PN"},
	{Label: LabelInspector2, Tag: tag.Tag{Group: 0x0010, Element: 0x2297}, VR: "PN"},

	{Label: LabelRows, Tag: tagRows, VR: "US", Numeric: true},
	{Label: LabelColumns, Tag: tagColumns, VR: "US", Numeric: true},
	{Label: LabelBitsAllocated, Tag: tagBitsAllocated, VR: "US", Numeric: true},
	{Label: LabelBitsStored, Tag: tagBitsStored, VR: "US", Numeric: true},
	{Label: LabelHighBit, Tag: tagHighBit, VR: "US", Numeric: true},
	{Label: LabelPhotometricInterpretation, Tag: tagPhotometricInterpretation, VR: "CS"},
}

// Attributes the codec reads or writes outside the labelled set.
var (
	tagFileMetaInformationVersion = tag.Tag{Group: 0x0002, Element: 0x0001}
	tagMediaStorageSOPClassUID    = tag.Tag{Group: 0x0002, Element: 0x0002}
	tagMediaStorageSOPInstanceUID = tag.Tag{Group: 0x0002, Element: 0x0003}
	tagTransferSyntaxUID          = tag.Tag{Group: 0x0002, Element: 0x0010}
	tagSpecificCharacterSet       = tag.Tag{Group: 0x0008, Element: 0x0005}
	tagSOPClassUID                = tag.Tag{Group: 0x0008, Element: 0x0016}
	tagSOPInstanceUID             = tag.Tag{Group: 0x0008, Element: 0x0018}
	tagSamplesPerPixel            = tag.Tag{Group: 0x0028, Element: 0x0002}
	tagPhotometricInterpretation  = tag.Tag{Group: 0x0028, Element: 0x0004}
	tagPlanarConfiguration        = tag.Tag{Group: 0x0028, Element: 0x0006}
	tagRows                       = tag.Tag{Group: 0x0028, Element: 0x0010}
	tagColumns                    = tag.Tag{Group: 0x0028, Element: 0x0011}
	tagBitsAllocated              = tag.Tag{Group: 0x0028, Element: 0x0100}
	tagBitsStored                 = tag.Tag{Group: 0x0028, Element: 0x0101}
	tagHighBit                    = tag.Tag{Group: 0x0028, Element: 0x0102}
	tagPixelRepresentation        = tag.Tag{Group: 0x0028, Element: 0x0103}
	tagPixelData                  = tag.Tag{Group: 0x7FE0, Element: 0x0010}
)

const (
	// SecondaryCaptureImageStorage is the SOP class every encoded file declares.
	SecondaryCaptureImageStorage = "1.2.840.10008.5.1.4.1.1.7"
	// ExplicitVRLittleEndian is the only transfer syntax written.
	ExplicitVRLittleEndian = "1.2.840.10008.1.2.1"

	characterSetUTF8 = "ISO_IR 192"
)

// Labels returns the labels of the fixed tag set in table order.
func Labels() []string {
	labels := make([]string, len(fixedTags))
	for i, ft := range fixedTags {
		labels[i] = ft.Label
	}
	return labels
}
