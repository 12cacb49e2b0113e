package news

import (
	"regexp"
	"strings"

	"github.com/pribylovaa/web3-hub/internal/models"
)

// categoryRule — категория и её ключевые слова. Правила проверяются по порядку.
type categoryRule struct {
	category string
	re       *regexp.Regexp
}

func rule(category string, keywords ...string) categoryRule {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}

	return categoryRule{
		category: category,
		re:       regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

var categoryRules = []categoryRule{
	rule(models.CategoryDeFi, "defi", "decentralized finance", "dex", "yield", "liquidity", "lending", "staking", "amm"),
	rule(models.CategoryNFTs, "nft", "nfts", "non-fungible", "opensea", "collectible", "collectibles"),
	rule(models.CategoryRegulation, "regulation", "regulatory", "sec", "cftc", "lawsuit", "compliance", "legislation", "mica"),
	rule(models.CategoryDAOs, "dao", "daos", "governance", "proposal"),
	rule(models.CategoryGaming, "gaming", "game", "games", "gamefi", "metaverse", "play-to-earn"),
	rule(models.CategoryLayer2, "layer 2", "layer-2", "l2", "rollup", "rollups", "arbitrum", "optimism", "zksync", "polygon"),
}

// categorize возвращает категорию первого совпавшего правила по title+excerpt
// (без учёта регистра, по границам слов). Без совпадений — Web3.
func categorize(title, excerpt string) string {
	text := title + " " + excerpt
	for _, r := range categoryRules {
		if r.re.MatchString(text) {
			return r.category
		}
	}

	return models.CategoryWeb3
}
