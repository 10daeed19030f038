package content

import (
	"path/filepath"

	"kiosk/internal/fields"
	"kiosk/internal/fsutil"
)

func (s *Store) FacilityData() map[string]any   { return s.record(FieldFacilityData) }
func (s *Store) UserData() map[string]any       { return s.record(FieldUserData) }
func (s *Store) FacilityColors() map[string]any { return s.record(FieldFacilityColors) }

func (s *Store) FacilityName() string    { return s.Text(FieldFacilityName) }
func (s *Store) ScrollUpperText() string { return s.Text(FieldScrollUpper) }
func (s *Store) ScrollLowerText() string { return s.Text(FieldScrollLower) }
func (s *Store) TextDaily() string       { return s.Text(FieldTextDaily) }
func (s *Store) TextCount() string       { return s.Text(FieldTextCount) }
func (s *Store) TextRound() string       { return s.Text(FieldTextRound) }

func (s *Store) QRCodeAvailable() bool   { return s.flag(FieldQRCodeAvailable) }
func (s *Store) FacilityLogoIsGIF() bool { return s.flag(FieldLogoIsGIF) }

// Text returns a text field by name.
func (s *Store) Text(field string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.texts[field]
}

func (s *Store) record(field string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fields.CloneRecord(s.records[field])
}

func (s *Store) flag(field string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[field]
}

// Image resolvers return an absolute file URI, or "" when the file is absent.

func (s *Store) GameImagePath(index int) string {
	if index < 1 || index > GameImageCount {
		return ""
	}
	return s.imageURI(gameImageFile(index))
}

func (s *Store) BannerImagePath() string { return s.imageURI(FileBannerImage) }
func (s *Store) LeftImagePath() string   { return s.imageURI(FileLeftImage) }
func (s *Store) RightImagePath() string  { return s.imageURI(FileRightImage) }
func (s *Store) QRCodePath() string      { return s.imageURI(FileQRCode) }
func (s *Store) GameLabGIFPath() string  { return s.imageURI(FileGameLabGIF) }

// FacilityLogoPath prefers the PNG logo over the GIF one.
func (s *Store) FacilityLogoPath() string {
	if uri := s.imageURI(FileLogoPNG); uri != "" {
		return uri
	}
	return s.imageURI(FileLogoGIF)
}

func (s *Store) imageURI(file string) string {
	return fsutil.ExistingFileURI(filepath.Join(s.Root(), file))
}

// Snapshot is a detached copy of every field.
type Snapshot struct {
	Root              string            `json:"root" yaml:"root"`
	FacilityData      map[string]any    `json:"facility_data" yaml:"facility_data"`
	UserData          map[string]any    `json:"user_data" yaml:"user_data"`
	FacilityColors    map[string]any    `json:"facility_colors" yaml:"facility_colors"`
	Texts             map[string]string `json:"texts" yaml:"texts"`
	QRCodeAvailable   bool              `json:"qr_code_available" yaml:"qr_code_available"`
	FacilityLogoIsGIF bool              `json:"facility_logo_is_gif" yaml:"facility_logo_is_gif"`
	Images            map[string]string `json:"images" yaml:"images"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	texts := make(map[string]string, len(s.texts))
	for field, value := range s.texts {
		texts[field] = value
	}
	s.mu.RUnlock()

	images := map[string]string{
		"banner":        s.BannerImagePath(),
		"facility_logo": s.FacilityLogoPath(),
		"left":          s.LeftImagePath(),
		"right":         s.RightImagePath(),
		"qr_code":       s.QRCodePath(),
		"gamelab":       s.GameLabGIFPath(),
	}
	for index := 1; index <= GameImageCount; index++ {
		images[gameImageFile(index)] = s.GameImagePath(index)
	}

	return Snapshot{
		Root:              s.Root(),
		FacilityData:      s.FacilityData(),
		UserData:          s.UserData(),
		FacilityColors:    s.FacilityColors(),
		Texts:             texts,
		QRCodeAvailable:   s.QRCodeAvailable(),
		FacilityLogoIsGIF: s.FacilityLogoIsGIF(),
		Images:            images,
	}
}
