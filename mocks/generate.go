package mocks

//go:generate mockgen -destination=./mock_marks.go -package=mocks github.com/rxtech-lab/t0-trading/internal/marks Provider
