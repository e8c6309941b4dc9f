package astrochart

// Sign is a 30° zodiac sign, Aries first.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

var signGlyphs = [12]string{
	"♈", "♉", "♊", "♋", "♌", "♍", "♎", "♏", "♐", "♑", "♒", "♓",
}

// SignOf returns the sign an angle falls in.
func SignOf(angle float64) Sign {
	return Sign(int(Normalize(angle)/30) % 12)
}

func (s Sign) String() string {
	if s < Aries || s > Pisces {
		return "Unknown"
	}
	return signNames[s]
}

// Glyph returns the Unicode symbol of the sign.
func (s Sign) Glyph() string {
	if s < Aries || s > Pisces {
		return "?"
	}
	return signGlyphs[s]
}

var pointGlyphs = map[string]string{
	"Sun":     "☉",
	"Moon":    "☽",
	"Mercury": "☿",
	"Venus":   "♀",
	"Mars":    "♂",
	"Jupiter": "♃",
	"Saturn":  "♄",
	"Uranus":  "♅",
	"Neptune": "♆",
	"Pluto":   "♇",
	"Chiron":  "⚷",
	"Lilith":  "⚸",
	"NNode":   "☊",
	"SNode":   "☋",
	"Fortune": "⊗",
}

// PointGlyph returns the symbol for a planet name, or its first two
// letters when no symbol is known.
func PointGlyph(name string) string {
	if g, ok := pointGlyphs[name]; ok {
		return g
	}
	r := []rune(name)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}
