package content

import "fmt"

// Well-known files under the content root.
const (
	FileFacilityData   = "facility_data.json"
	FileUserData       = "user_data.json"
	FileFacilityColors = "facility_colors"
	FileFacilityName   = "facility_name.txt"
	FileScrollUpper    = "scroll_upper.txt"
	FileScrollLower    = "scroll_lower.txt"
	FileTextDaily      = "text_daily"
	FileTextCount      = "text_count"
	FileTextRound      = "text_round"
	FileQRCode         = "qr_support.png"
	FileLogoPNG        = "facility_logo.png"
	FileLogoGIF        = "facility_logo.gif"
	FileLeftImage      = "left_image.png"
	FileRightImage     = "right_image.png"
	FileBannerImage    = "banner_image.png"
	FileGameLabGIF     = "gamelab.gif"
)

// Field names carried by change events.
const (
	FieldFacilityData    = "facility_data"
	FieldUserData        = "user_data"
	FieldFacilityColors  = "facility_colors"
	FieldFacilityName    = "facility_name"
	FieldScrollUpper     = "scroll_upper"
	FieldScrollLower     = "scroll_lower"
	FieldTextDaily       = "text_daily"
	FieldTextCount       = "text_count"
	FieldTextRound       = "text_round"
	FieldQRCodeAvailable = "qr_code_available"
	FieldLogoIsGIF       = "facility_logo_is_gif"
	FieldDataPath        = "data_path"
)

const (
	DefaultScrollText = "SEAMLESS SCROLLING TEXT NOTIFICATION"
	DefaultTextDaily  = "LAB HOURS"
	DefaultTextCount  = "PLAYERS"
	DefaultTextRound  = "NEW RELEASES"
	// DefaultRoot is the development content root.
	DefaultRoot = "welcome-data"
	// GameImageCount is the number of game{n}_image.jpg slots.
	GameImageCount = 4
)

type recordField struct {
	field string
	file  string
}

var recordFields = []recordField{
	{field: FieldFacilityData, file: FileFacilityData},
	{field: FieldUserData, file: FileUserData},
	{field: FieldFacilityColors, file: FileFacilityColors},
}

type textField struct {
	field    string
	file     string
	fallback string
	// keepOnEmpty leaves the previous value in place instead of resetting.
	keepOnEmpty bool
}

var textFields = []textField{
	{field: FieldFacilityName, file: FileFacilityName, keepOnEmpty: true},
	{field: FieldScrollUpper, file: FileScrollUpper, fallback: DefaultScrollText},
	{field: FieldScrollLower, file: FileScrollLower, fallback: DefaultScrollText},
	{field: FieldTextDaily, file: FileTextDaily, fallback: DefaultTextDaily},
	{field: FieldTextCount, file: FileTextCount, fallback: DefaultTextCount},
	{field: FieldTextRound, file: FileTextRound, fallback: DefaultTextRound},
}

func gameImageFile(index int) string {
	return fmt.Sprintf("game%d_image.jpg", index)
}

// WatchedFiles lists every file name the store watches under its root.
func WatchedFiles() []string {
	files := make([]string, 0, 24)
	for _, record := range recordFields {
		files = append(files, record.file)
	}
	for _, text := range textFields {
		files = append(files, text.file)
	}
	files = append(files, FileQRCode, FileLogoPNG, FileLogoGIF)
	for index := 1; index <= GameImageCount; index++ {
		files = append(files, gameImageFile(index))
	}
	return append(files, FileLeftImage, FileRightImage, FileBannerImage, FileGameLabGIF)
}
