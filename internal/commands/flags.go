package commands

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/model"
)

// decimalValue is a pflag.Value accepting amounts like "-12.50", "$1,200"
// or "(12.00)".
type decimalValue struct {
	d *decimal.Decimal
}

var _ pflag.Value = decimalValue{}

func (v decimalValue) String() string {
	if v.d == nil {
		return "0"
	}
	return v.d.String()
}

func (v decimalValue) Set(s string) error {
	d, err := importer.ParseMoney(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

func (decimalValue) Type() string { return "decimal" }

// dateValue is a pflag.Value accepting any layout model.ParseDate knows.
type dateValue struct {
	t *time.Time
}

var _ pflag.Value = dateValue{}

func (v dateValue) String() string {
	if v.t == nil || v.t.IsZero() {
		return ""
	}
	return v.t.Format(model.DateFormat)
}

func (v dateValue) Set(s string) error {
	t, err := model.ParseDate(s)
	if err != nil {
		return err
	}
	*v.t = t
	return nil
}

func (dateValue) Type() string { return "date" }

func decimalFlag(fs *pflag.FlagSet, p *decimal.Decimal, name, usage string) {
	fs.Var(decimalValue{p}, name, usage)
}

func dateFlag(fs *pflag.FlagSet, p *time.Time, name, usage string) {
	fs.Var(dateValue{p}, name, usage)
}

// today is midnight UTC of the current local date.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
