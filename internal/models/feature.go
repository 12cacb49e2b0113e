// models содержит доменные сущности web3-hub.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnknownFeature — идентификатор фичи не входит в закрытый список.
var ErrUnknownFeature = errors.New("unknown feature")

// Feature — идентификатор продуктовой возможности, доступ к которой гейтится балансом токена.
type Feature string

const (
	FeatureChatbot                Feature = "chatbot"
	FeatureSmartContractGenerator Feature = "smart-contract-generator"
	FeatureTradeAssistant         Feature = "trade-assistant"
	FeatureAskPeople              Feature = "ask-people"
	FeatureNewsInsights           Feature = "news-insights"
	FeatureSomniaEcosystem        Feature = "somnia-ecosystem"
	FeatureGamingBot              Feature = "gaming-bot"

	// Зарезервированы под будущие инструменты, в UI пока не используются.
	FeatureNFTStudio        Feature = "nft-studio"
	FeatureTokenLauncher    Feature = "token-launcher"
	FeatureDAOGovernance    Feature = "dao-governance"
	FeatureDeFiStrategist   Feature = "defi-strategist"
	FeaturePortfolioManager Feature = "portfolio-manager"
)

// AllFeatures возвращает полный список фич в стабильном порядке.
func AllFeatures() []Feature {
	return []Feature{
		FeatureChatbot,
		FeatureSmartContractGenerator,
		FeatureTradeAssistant,
		FeatureAskPeople,
		FeatureNewsInsights,
		FeatureSomniaEcosystem,
		FeatureGamingBot,
		FeatureNFTStudio,
		FeatureTokenLauncher,
		FeatureDAOGovernance,
		FeatureDeFiStrategist,
		FeaturePortfolioManager,
	}
}

// Valid сообщает, входит ли фича в закрытый список.
func (f Feature) Valid() bool {
	for _, known := range AllFeatures() {
		if f == known {
			return true
		}
	}

	return false
}

// ParseFeature нормализует строку (trim, lower) и проверяет её по списку.
func ParseFeature(raw string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(raw)))
	if !f.Valid() {
		return "", ErrUnknownFeature
	}

	return f, nil
}

// FeatureAccess — решение о доступе к фиче для конкретного кошелька.
//
// Особенности:
//   - создаётся заново на каждую проверку, не кэшируется;
//   - CurrentCredits — точная десятичная запись баланса, в JSON это число
//     ("0.99999999999999999999", а не округлённое 1);
//   - HasAccess всегда равен CurrentCredits >= RequiredCredits для этого же значения.
type FeatureAccess struct {
	Feature         Feature     `json:"feature"`
	RequiredCredits int64       `json:"requiredCredits"`
	CurrentCredits  json.Number `json:"currentCredits"`
	HasAccess       bool        `json:"hasAccess"`
}
