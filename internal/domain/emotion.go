package domain

// Emotion - profile mood selector. The option set grows with the tier;
// a downgrade may leave the current selection unavailable, in which
// case it resets to DefaultEmotion.
type Emotion string

const (
	EmotionHappiness Emotion = "happiness"
	EmotionSadness   Emotion = "sadness"
	EmotionJealousy  Emotion = "jealousy"
	EmotionEnvy      Emotion = "envy"
	EmotionEmpathy   Emotion = "empathy"
	EmotionSympathy  Emotion = "sympathy"
	EmotionGrief     Emotion = "grief"
	EmotionBliss     Emotion = "bliss"
)

// DefaultEmotion is available at every tier.
const DefaultEmotion = EmotionHappiness

// emotionsByTier maps each tier to the options it unlocks on top of the
// lower tiers.
var emotionsByTier = map[Tier][]Emotion{
	TierBasic:  {EmotionHappiness, EmotionSadness},
	TierPro:    {EmotionJealousy, EmotionEnvy},
	TierXtreme: {EmotionEmpathy, EmotionSympathy},
	TierDivine: {EmotionGrief, EmotionBliss},
}

// EmotionsFor returns every emotion available at the given tier, lowest
// tier options first.
func EmotionsFor(catalog *TierCatalog, tier Tier) []Emotion {
	rank := catalog.Rank(tier)
	var out []Emotion
	for _, t := range catalog.Tiers() {
		if catalog.Rank(t) > rank {
			break
		}
		out = append(out, emotionsByTier[t]...)
	}
	return out
}

// EmotionAllowed reports whether the emotion may be selected at the tier.
func EmotionAllowed(catalog *TierCatalog, tier Tier, e Emotion) bool {
	for _, allowed := range EmotionsFor(catalog, tier) {
		if allowed == e {
			return true
		}
	}
	return false
}
