package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 1889)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateInvoiceNumber returns a short human-readable invoice number,
// e.g. `FAT-8QXZ12A`. These are what clients see on the invoice itself;
// the ULID stays the primary key.
func GenerateInvoiceNumber() string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	if len(id) > 8 {
		id = id[:8]
	}

	return "FAT-" + strings.ToUpper(id)
}

const (
	// Prefixes for all billing entities

	UUID_PREFIX_INVOICE           = "inv"
	UUID_PREFIX_INVOICE_LINE_ITEM = "inv_line"
	UUID_PREFIX_SUBSCRIPTION      = "subs"
	UUID_PREFIX_PLAN              = "plan"
	UUID_PREFIX_MATTER            = "matter"
	UUID_PREFIX_PAYMENT_PLAN      = "pplan"
	UUID_PREFIX_TIME_ENTRY        = "tentry"
	UUID_PREFIX_DISCOUNT_RULE     = "disc"
	UUID_PREFIX_GENERATION_LOG    = "genlog"
	UUID_PREFIX_BATCH             = "batch"
	UUID_PREFIX_CLIENT            = "client"
	UUID_PREFIX_EXPENSE           = "exp"
)
