// Package avatar derives a stable set of visual features from a wallet
// address. Pure function of the address: no network, no randomness, no
// stored state, so the same account renders identically on every device.
package avatar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	styleOptions     = []string{"big-smile"}
	seedOptions      = []string{"Riley", "Alexander", "Vivian", "Sadie", "Christopher"}
	accessoryOptions = []string{"catEars", "clownNose", "faceMask", "glasses", "mustache", "sailormoonCrown", "sleepMask", "sunglasses"}
	eyesOptions      = []string{"angry", "cheery", "confused", "normal", "sad"}
	hairOptions      = []string{"bangs", "bowlCutHair", "braids", "bunHair", "curlyBob", "curlyShortHair", "froBun", "shortHair", "straightHair", "wavyBob", "mohawk"}
	hairColorOptions = []string{"3a1a00", "220f00", "238d80", "605de4", "71472d", "d56c0c", "e2ba87", "e9b729"}
	mouthOptions     = []string{"awkwardSmile", "braces", "gapSmile", "kawaii", "openedSmile", "openSad", "teethSmile", "unimpressed"}
	skinColorOptions = []string{"8c5a2b", "643d19", "a47539", "c99c62", "e2ba87", "efcc9f", "f5d7b1", "ffe4c0"}
)

const (
	sectionWidth    = 5
	backgroundColor = "b6e3f4"
	rendererBase    = "https://api.dicebear.com/9.x"
)

// FeatureSet is the derived visual identity for one address.
type FeatureSet struct {
	Style     string
	Seed      string
	Accessory string
	Eyes      string
	Hair      string
	HairColor string
	Mouth     string
	SkinColor string
}

// Derive maps an address to its FeatureSet. For each category a fixed-width
// slice of the address hex digits is parsed as an integer and reduced modulo
// the option count.
func Derive(addr common.Address) FeatureSet {
	hexDigits := strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x"))

	return FeatureSet{
		Style:     pick(hexDigits, 0, styleOptions),
		Seed:      pick(hexDigits, 5, seedOptions),
		Accessory: pick(hexDigits, 10, accessoryOptions),
		Eyes:      pick(hexDigits, 15, eyesOptions),
		Hair:      pick(hexDigits, 20, hairOptions),
		HairColor: pick(hexDigits, 25, hairColorOptions),
		Mouth:     pick(hexDigits, 30, mouthOptions),
		SkinColor: pick(hexDigits, 35, skinColorOptions),
	}
}

// URL renders the FeatureSet as a DiceBear request URL.
func (f FeatureSet) URL() string {
	return fmt.Sprintf(
		"%s/%s/png?seed=%s&accessories=%s&eyes=%s&hair=%s&hairColor=%s&mouth=%s&skinColor=%s&backgroundColor=%s",
		rendererBase, f.Style, f.Seed, f.Accessory, f.Eyes, f.Hair, f.HairColor, f.Mouth, f.SkinColor, backgroundColor,
	)
}

// pick selects an option from a fixed-width hex slice starting at start.
// Unparseable slices fall back to 0, matching records shorter than the
// expected 40 hex digits.
func pick(hexDigits string, start int, options []string) string {
	end := start + sectionWidth
	if start >= len(hexDigits) {
		return options[0]
	}
	if end > len(hexDigits) {
		end = len(hexDigits)
	}
	value, err := strconv.ParseUint(hexDigits[start:end], 16, 64)
	if err != nil {
		value = 0
	}
	return options[value%uint64(len(options))]
}
