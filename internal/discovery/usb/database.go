// internal/discovery/usb/database.go
package usb

import (
	"strings"

	"github.com/google/gousb"
)

// PicoVendorID is the USB vendor id of Pico Technology
const PicoVendorID gousb.ID = 0x0CE9

// FamilyInfo describes one PicoScope product family
type FamilyInfo struct {
	Family     string
	Driver     string
	Supported  bool
	Confidence float64
}

// familyPrefixes maps product string prefixes to families, most specific
// first
var familyPrefixes = []struct {
	prefix string
	info   FamilyInfo
}{
	{"PicoScope 6", FamilyInfo{Family: "ps6000", Driver: "ps6000", Supported: true, Confidence: 0.95}},
	{"PicoScope 5", FamilyInfo{Family: "ps5000", Confidence: 0.9}},
	{"PicoScope 4", FamilyInfo{Family: "ps4000", Confidence: 0.9}},
	{"PicoScope 3", FamilyInfo{Family: "ps3000", Confidence: 0.9}},
	{"PicoScope 2", FamilyInfo{Family: "ps2000", Confidence: 0.9}},
}

// IsPicoDevice reports whether desc belongs to Pico Technology
func IsPicoDevice(desc *gousb.DeviceDesc) bool {
	return desc != nil && desc.Vendor == PicoVendorID
}

// IdentifyFamily classifies a Pico product string. Unknown products get a
// low-confidence "unknown" family.
func IdentifyFamily(product string) FamilyInfo {
	p := strings.TrimSpace(product)
	for _, f := range familyPrefixes {
		if strings.HasPrefix(p, f.prefix) {
			return f.info
		}
	}
	return FamilyInfo{Family: "unknown", Confidence: 0.5}
}
