package resolve

import (
	"github.com/cpmech/mcgeom/internal/geomerr"
	"github.com/cpmech/mcgeom/internal/macro"
	"github.com/cpmech/mcgeom/internal/mat"
)

// macrobodyMnemonics is the closed set card.mnemonics also recognizes
// but BuildSurface refuses — these go through macro.Expand* instead.
var macrobodyMnemonics = map[string]bool{
	"rpp": true, "box": true, "sph": true, "rcc": true, "rec": true,
	"ell": true, "trc": true, "wed": true, "rhp": true, "hex": true,
	"arb": true, "qua": true, "tor": true,
	"x": true, "y": true, "z": true,
}

// ExpandMacrobody dispatches one macrobody card to its macro.Expand*
// function (spec.md §4.7, component C4). file/line/base/mnemonic/args
// come from the owning card.SurfaceCard; aff is any TR already
// resolved for the card; next allocates ids for the produced
// primitives; warn records non-fatal degeneracies.
func ExpandMacrobody(file string, line int, base, mnemonic string, args []float64, aff mat.Affine, next macro.IDAllocator, warn func(string)) (macro.Result, error) {
	switch mnemonic {
	case "rpp":
		return macro.ExpandRPP(base, args, aff, next)
	case "box":
		return macro.ExpandBOX(base, args, aff, next, warn)
	case "sph":
		return macro.ExpandSPH(base, args, aff, next)
	case "rcc":
		return macro.ExpandRCC(base, args, aff, next)
	case "trc":
		return macro.ExpandTRC(base, args, aff, next)
	case "rec":
		return macro.ExpandREC(base, args, aff, next, warn)
	case "ell":
		return macro.ExpandELL(base, args, aff, next)
	case "wed":
		return macro.ExpandWED(base, args, aff, next)
	case "rhp", "hex":
		return macro.ExpandRHP(base, args, aff, next)
	case "arb":
		return macro.ExpandARB(base, args, aff, next)
	case "qua":
		return macro.ExpandQUA(base, args, aff, next)
	case "tor":
		if len(args) < 11 {
			return macro.Result{}, geomerr.At(geomerr.BadCard, file, line, "tor %q: expected at least 11 parameters, got %d", base, len(args))
		}
		return macro.ExpandTOR(base, args[:9], args[9], args[10], aff, next)
	case "x", "y", "z":
		return macro.ExpandAxisSymmetric(base, mnemonic[0], args, aff, next, warn)
	}
	return macro.Result{}, geomerr.At(geomerr.UnknownSymbol, file, line, "%q is not a recognized macrobody mnemonic", mnemonic)
}
