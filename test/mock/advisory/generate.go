package mock_advisory

//go:generate -command mockgen go run go.uber.org/mock/mockgen -destination=./mocks.go github.com/quay/sbomkit/advisory
//go:generate mockgen Source
