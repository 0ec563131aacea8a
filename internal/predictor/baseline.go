package predictor

import (
	"math"

	"github.com/hoopsight/predictions-api/internal/models"
)

// Built-in model types.
const (
	TypeLogisticBaseline = "logistic_baseline"
	TypePythagorean      = "pythagorean"
)

// logisticBaseline scores the home team with a logistic blend of feature
// differentials. Weights come from hyperparameters, with defaults trained
// on historical seasons.
type logisticBaseline struct {
	wWinPct   float64
	wPtDiff   float64
	wLast5    float64
	wRest     float64
	wH2H      float64
	homeCourt float64
	marginK   float64
}

func NewLogisticBaseline(hp models.Hyperparameters) (Predictor, error) {
	p := &logisticBaseline{
		wWinPct:   2.2,
		wPtDiff:   0.12,
		wLast5:    0.15,
		wRest:     0.08,
		wH2H:      0.35,
		homeCourt: 0.30,
		marginK:   14.0,
	}
	if v, ok := hp["w_win_pct"]; ok {
		p.wWinPct = v
	}
	if v, ok := hp["w_point_diff"]; ok {
		p.wPtDiff = v
	}
	if v, ok := hp["w_last5"]; ok {
		p.wLast5 = v
	}
	if v, ok := hp["w_rest"]; ok {
		p.wRest = v
	}
	if v, ok := hp["w_h2h"]; ok {
		p.wH2H = v
	}
	if v, ok := hp["home_court"]; ok {
		p.homeCourt = v
	}
	if v, ok := hp["margin_scale"]; ok {
		p.marginK = v
	}
	return p, nil
}

func (p *logisticBaseline) Predict(fv *models.FeatureVector) (Outcome, error) {
	z := p.homeCourt
	z += p.wWinPct * (fv.HomeWinPct - fv.AwayWinPct)
	z += p.wPtDiff * (fv.HomePointDiff - fv.AwayPointDiff)
	z += p.wLast5 * float64(fv.HomeLast5Wins-fv.AwayLast5Wins)
	z += p.wRest * restAdvantage(fv)
	if fv.H2HTotal > 0 {
		edge := float64(fv.H2HHomeWins-fv.H2HAwayWins) / float64(fv.H2HTotal)
		z += p.wH2H * edge
	}

	probHome := 1.0 / (1.0 + math.Exp(-z))
	return outcomeFromHomeProb(fv, probHome, p.marginK*math.Abs(z)), nil
}

// restAdvantage folds rest days and back-to-back flags into a single signed
// term. A missing prior game contributes nothing; the sentinel must not
// masquerade as real rest.
func restAdvantage(fv *models.FeatureVector) float64 {
	var adv float64
	if fv.HomeRestDays != nil && fv.AwayRestDays != nil {
		adv = clamp(float64(*fv.HomeRestDays-*fv.AwayRestDays), -3, 3)
	}
	if fv.HomeBackToBack {
		adv -= 1
	}
	if fv.AwayBackToBack {
		adv += 1
	}
	return adv
}

// pythagorean uses the pythagorean expectation over scoring averages, a
// classic strength estimate for basketball (exponent ~13.91 for the NBA).
type pythagorean struct {
	exponent  float64
	homeBoost float64
	marginK   float64
}

func NewPythagorean(hp models.Hyperparameters) (Predictor, error) {
	p := &pythagorean{exponent: 13.91, homeBoost: 0.035, marginK: 28.0}
	if v, ok := hp["exponent"]; ok {
		p.exponent = v
	}
	if v, ok := hp["home_boost"]; ok {
		p.homeBoost = v
	}
	if v, ok := hp["margin_scale"]; ok {
		p.marginK = v
	}
	return p, nil
}

func (p *pythagorean) Predict(fv *models.FeatureVector) (Outcome, error) {
	home := pythagoreanExpectation(fv.HomeAvgPoints, fv.HomeAvgOppPoints, p.exponent)
	away := pythagoreanExpectation(fv.AwayAvgPoints, fv.AwayAvgOppPoints, p.exponent)

	// Log5-style matchup probability, nudged for home court.
	denom := home*(1-away) + away*(1-home)
	probHome := 0.5
	if denom > 0 {
		probHome = home * (1 - away) / denom
	}
	probHome = clamp(probHome+p.homeBoost, 0.01, 0.99)

	return outcomeFromHomeProb(fv, probHome, p.marginK*math.Abs(probHome-0.5)), nil
}

func pythagoreanExpectation(pts, oppPts, exp float64) float64 {
	if pts <= 0 && oppPts <= 0 {
		return 0.5
	}
	pe := math.Pow(pts, exp)
	oe := math.Pow(oppPts, exp)
	if pe+oe == 0 {
		return 0.5
	}
	return pe / (pe + oe)
}

func outcomeFromHomeProb(fv *models.FeatureVector, probHome, margin float64) Outcome {
	if probHome >= 0.5 {
		return Outcome{Winner: fv.HomeTeam, WinProbability: probHome, Margin: margin}
	}
	return Outcome{Winner: fv.AwayTeam, WinProbability: 1 - probHome, Margin: margin}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
