package dto

type WebhookResponse struct {
	Received bool `json:"received"`
}

type CleanupResponse struct {
	OrphanSalons         int64 `json:"orphanSalons"`
	OrphanPricingConfigs int64 `json:"orphanPricingConfigs"`
	ExpiredLogs          int64 `json:"expiredLogs"`
}
