package money

import (
	"errors"
	"math"
	"strings"
)

// DefaultCurrency is used when the remote API sends bare numbers.
const DefaultCurrency = "EUR"

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// Money keeps amounts in integer minor units (cents).
type Money struct {
	Amount   int64
	Currency string
}

func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Must panics on an invalid currency; meant for tests and constants.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// FromMajor converts a decimal amount such as 89.5 into cents, rounding half away from zero.
// NaN and infinities become zero.
func FromMajor(value float64, currency string) Money {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: int64(math.Round(value * 100)), Currency: strings.ToUpper(currency)}
}

// Zero returns an empty amount in the given currency.
func Zero(currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Currency: strings.ToUpper(currency)}
}

// Major returns the amount in major units.
func (m Money) Major() float64 {
	return float64(m.Amount) / 100
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) IsNegative() bool {
	return m.Amount < 0
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
