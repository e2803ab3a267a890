package fixtures

// Default generation settings.
const (
	DefaultDebtors           = 500
	DefaultSeed              = 42
	DefaultWorkers           = 4
	DefaultOrphanRate        = 0.02
	DefaultInvalidAmountRate = 0.02
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Output file base names.
const (
	FirstExtract  = "jur_ene_marzo"
	SecondExtract = "jur_abril_sep"
	PaymentsFile  = "pagos"
	PromisesFile  = "promesas"
	ContactsFile  = "gestiones"
)

// Generation ranges.
const (
	firstDebtorID      = 1_000_000
	orphanOffset       = 9_000_000
	idPadWidth         = 10
	minBalance         = 300_000.0
	balanceSpread      = 80_000_000.0
	maxDaysPastDue     = 720
	historyDays        = 365
	maxPayments        = 4
	maxPromises        = 3
	maxContacts        = 6
	secondExtractShare = 0.45
	repeatedShare      = 0.15
)
