package adapters

import (
	"time"

	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/de-tools/registry-sync/pkg/models/domain"
)

// MapCloudAccountApiToDomain converts a CSPM account record. Returns false
// when the record is missing the role ARN or external id: such accounts
// cannot be onboarded and are skipped with a warning upstream.
func MapCloudAccountApiToDomain(a api.CloudAccount, discoveredAt time.Time) (domain.Account, bool) {
	if a.AccountID == "" || a.ResourceMetadata.IAMRoleARN == "" || a.ResourceMetadata.ExternalID == "" {
		return domain.Account{}, false
	}
	return domain.Account{
		ID:           a.AccountID,
		Name:         a.AccountName,
		IAMRoleARN:   a.ResourceMetadata.IAMRoleARN,
		ExternalID:   a.ResourceMetadata.ExternalID,
		DiscoveredAt: discoveredAt,
	}, true
}
