package generator

import (
	"math/rand/v2"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// TextGenerator generates a single string per item. Later items switch to
// wider alphabets, periodic patterns and finally near-palindromes.
type TextGenerator struct {
	Bounds casegen.Bounds
	rand   *rand.Rand
}

const (
	lowercase    = "abcdefghijklmnopqrstuvwxyz"
	letters      = lowercase + "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alphanumeric = letters + "0123456789"

	textLengthFloor   = 10
	textLengthCapBase = 100
	textLengthCapStep = 50
	maxPatternLength  = 10
)

// textBucket names the strategy used for a position in the sequence.
type textBucket int

const (
	bucketLowercase textBucket = iota
	bucketMixedCase
	bucketAlphanumeric
	bucketPeriodic
	bucketPalindrome
)

func textBucketAt(i, count int) textBucket {
	switch pos := position(i, count); {
	case pos < 0.2:
		return bucketLowercase
	case pos < 0.4:
		return bucketMixedCase
	case pos < 0.6:
		return bucketAlphanumeric
	case pos < 0.8:
		return bucketPeriodic
	default:
		return bucketPalindrome
	}
}

func (g *TextGenerator) Init(r *rand.Rand) {
	g.rand = r
}

func (g *TextGenerator) Generate(count int) []casegen.GenerationSpec {
	specs := make([]casegen.GenerationSpec, 0, count)

	for i := range count {
		length := ramp(i, count, textLengthFloor, g.Bounds.MaxSize, textLengthCapBase, textLengthCapStep, g.Bounds.MinSize)
		s := g.text(textBucketAt(i, count), length)
		specs = append(specs, casegen.GenerationSpec{Payload: s, IsSample: isSample(i)})
	}
	return specs
}

func (g *TextGenerator) text(bucket textBucket, length int) string {
	if length == 0 {
		return ""
	}
	switch bucket {
	case bucketLowercase:
		return string(randomString(g.rand, lowercase, length))
	case bucketMixedCase:
		return string(randomString(g.rand, letters, length))
	case bucketAlphanumeric:
		return string(randomString(g.rand, alphanumeric, length))
	case bucketPeriodic:
		return string(periodic(g.rand, length))
	default:
		p := buildPalindrome(g.rand, length)
		injectNoise(g.rand, p, length/10)
		return string(p)
	}
}

func randomString(r *rand.Rand, alphabet string, length int) []byte {
	b := make([]byte, length)
	for k := range b {
		b[k] = alphabet[r.IntN(len(alphabet))]
	}
	return b
}

// periodic repeats a short random lowercase pattern up to length.
func periodic(r *rand.Rand, length int) []byte {
	period := 1 + r.IntN(max(1, min(maxPatternLength, length)))
	pattern := randomString(r, lowercase, period)
	b := make([]byte, length)
	for k := range b {
		b[k] = pattern[k%period]
	}
	return b
}

// buildPalindrome builds a random half and mirrors it, with a random middle
// character when length is odd. The result is always an exact palindrome.
func buildPalindrome(r *rand.Rand, length int) []byte {
	half := randomString(r, lowercase, length/2)
	b := make([]byte, 0, length)
	b = append(b, half...)
	if length%2 == 1 {
		b = append(b, lowercase[r.IntN(len(lowercase))])
	}
	for k := len(half) - 1; k >= 0; k-- {
		b = append(b, half[k])
	}
	return b
}

// injectNoise overwrites n random positions with random lowercase letters.
func injectNoise(r *rand.Rand, b []byte, n int) {
	if len(b) == 0 {
		return
	}
	for range n {
		b[r.IntN(len(b))] = lowercase[r.IntN(len(lowercase))]
	}
}

func (g *TextGenerator) Category() casegen.Category {
	return casegen.CategoryText
}

func (g *TextGenerator) Description() string {
	return "Text: a single line of letters and digits, possibly empty"
}

func (g *TextGenerator) DefaultCount() int {
	return defaultCount
}
