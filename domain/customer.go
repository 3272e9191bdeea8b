package domain

import (
	"errors"
	"strings"
)

var ErrInvalidCustomer = errors.New("invalid customer record")

// CustomerRecord is one row of the uploaded visits CSV.
type CustomerRecord struct {
	Row                int
	CustomerName       string
	LastService        string
	Visits             int
	DaysSinceLastVisit int
}

// Validate reports whether the record carries enough data to build a tiered offer.
func (c CustomerRecord) Validate() error {
	if strings.TrimSpace(c.CustomerName) == "" {
		return errors.Join(ErrInvalidCustomer, errors.New("customer_name is empty"))
	}
	if strings.TrimSpace(c.LastService) == "" {
		return errors.Join(ErrInvalidCustomer, errors.New("last_service is empty"))
	}
	if c.Visits < 0 || c.DaysSinceLastVisit < 0 {
		return errors.Join(ErrInvalidCustomer, errors.New("negative visit data"))
	}
	return nil
}
