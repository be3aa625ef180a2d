package repository

import (
	"github.com/google/wire"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/conversationrepo"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/evidencerepo"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/repository/messagerepo"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/transaction"
)

var RepositoryProvider = wire.NewSet(
	transaction.NewDatabase,
	wire.Bind(new(messaging.Transactor), new(*transaction.Database)),
	conversationrepo.NewConversationGormRepository,
	messagerepo.NewMessageGormRepository,
	evidencerepo.NewEvidenceGormRepository,
	wire.Bind(new(messaging.EvidenceSource), new(*evidencerepo.EvidenceGormRepository)),
)
