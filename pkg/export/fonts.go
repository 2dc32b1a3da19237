package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontsOnce sync.Once
	regular   *opentype.Font
	bold      *opentype.Font
	fontsErr  error

	fontsMu   sync.Mutex
	fallbacks []*opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// RegisterFont appends a TrueType/OpenType font to the chain consulted for
// runes the Go fonts lack, e.g. Noto Sans Georgian.
func RegisterFont(data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("export: parse font: %w", err)
	}
	fontsMu.Lock()
	defer fontsMu.Unlock()
	fallbacks = append(fallbacks, f)
	return nil
}

// LoadFontDir registers every .ttf and .otf file in dir, in name order. A
// missing dir is not an error.
func LoadFontDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, err
		}
		if err := RegisterFont(data); err != nil {
			return n, fmt.Errorf("%s: %w", e.Name(), err)
		}
		n++
	}
	return n, nil
}

// faceSet is the Go face for a style followed by the registered fallbacks at
// the same size.
type faceSet struct {
	faces []font.Face
}

type run struct {
	face font.Face
	text string
}

// faceCache holds the faces of one Render. Faces carry glyph buffers and are
// not shared between goroutines; parsed fonts are.
type faceCache map[styleSpec]*faceSet

func (c faceCache) get(s styleSpec) (*faceSet, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("export: load fonts: %w", err)
	}
	key := styleSpec{bold: s.bold, size: s.size}
	if fs, ok := c[key]; ok {
		return fs, nil
	}
	src := regular
	if s.bold {
		src = bold
	}
	fontsMu.Lock()
	chain := append([]*opentype.Font{src}, fallbacks...)
	fontsMu.Unlock()

	fs := &faceSet{}
	for _, f := range chain {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: s.size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, fmt.Errorf("export: new face: %w", err)
		}
		fs.faces = append(fs.faces, face)
	}
	c[key] = fs
	return fs, nil
}

func (fs *faceSet) primary() font.Face { return fs.faces[0] }

// faceOf picks the first face with a glyph for r, or nil.
func (fs *faceSet) faceOf(r rune) font.Face {
	for _, f := range fs.faces {
		if _, ok := f.GlyphAdvance(r); ok {
			return f
		}
	}
	return nil
}

// cover replaces Georgian letters that no face can draw with their national
// romanization. Other uncovered runes are kept.
func (fs *faceSet) cover(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return isGeorgian(r) && fs.faceOf(r) == nil }) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if isGeorgian(r) && fs.faceOf(r) == nil {
			b.WriteString(romanizeRune(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// runs splits s into maximal runs drawn with the same face.
func (fs *faceSet) runs(s string) []run {
	var out []run
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		face := fs.faceOf(r)
		if face == nil || r == ' ' {
			face = fs.primary()
		}
		if n := len(out); n > 0 && out[n-1].face == face {
			out[n-1].text += s[:size]
		} else {
			out = append(out, run{face: face, text: s[:size]})
		}
		s = s[size:]
	}
	return out
}

func (fs *faceSet) measure(s string) fixed.Int26_6 {
	var w fixed.Int26_6
	for _, r := range fs.runs(s) {
		w += font.MeasureString(r.face, r.text)
	}
	return w
}

func (fs *faceSet) draw(d *font.Drawer, s string) {
	for _, r := range fs.runs(s) {
		d.Face = r.face
		d.DrawString(r.text)
	}
}

// Georgian national romanization (2002).
var georgianLatin = map[rune]string{
	'ა': "a", 'ბ': "b", 'გ': "g", 'დ': "d", 'ე': "e", 'ვ': "v", 'ზ': "z",
	'თ': "t", 'ი': "i", 'კ': "k'", 'ლ': "l", 'მ': "m", 'ნ': "n", 'ო': "o",
	'პ': "p'", 'ჟ': "zh", 'რ': "r", 'ს': "s", 'ტ': "t'", 'უ': "u", 'ფ': "p",
	'ქ': "k", 'ღ': "gh", 'ყ': "q'", 'შ': "sh", 'ჩ': "ch", 'ც': "ts", 'ძ': "dz",
	'წ': "ts'", 'ჭ': "ch'", 'ხ': "kh", 'ჯ': "j", 'ჰ': "h",
}

// Mtavruli capitals sit at a fixed offset from their Mkhedruli letters.
const mtavruliOffset = 0x1C90 - 0x10D0

func isGeorgian(r rune) bool {
	return (r >= 0x10A0 && r <= 0x10FF) || (r >= 0x1C90 && r <= 0x1CBF) || (r >= 0x2D00 && r <= 0x2D2F)
}

func romanizeRune(r rune) string {
	if r >= 0x1C90 && r <= 0x1CBF {
		if s, ok := georgianLatin[r-mtavruliOffset]; ok {
			return strings.ToUpper(s[:1]) + s[1:]
		}
	}
	if s, ok := georgianLatin[r]; ok {
		return s
	}
	return "?"
}

// Romanize transliterates Georgian letters in s and leaves the rest alone.
func Romanize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isGeorgian(r) {
			b.WriteString(romanizeRune(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
