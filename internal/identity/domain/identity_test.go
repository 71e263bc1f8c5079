package domain

import (
	"testing"

	userdomain "github.com/techdevs/gibson-accounts/internal/user/domain"
)

func TestLoginRequest_Validate(t *testing.T) {
	local := LoginRequest{
		Provider:  ProviderLocal,
		TenantID:  "t1",
		TenantKey: "key",
		UserType:  userdomain.UserTypeCustomer,
		Email:     "a@x.com",
		Password:  "pw",
	}
	if err := local.Validate(); err != nil {
		t.Errorf("local request should validate: %v", err)
	}

	fed := LoginRequest{
		Provider:  ProviderGoogle,
		TenantID:  "t1",
		TenantKey: "key",
		UserType:  userdomain.UserTypeCustomer,
		Assertion: "raw-token",
	}
	if err := fed.Validate(); err != nil {
		t.Errorf("federated request should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*LoginRequest)
		base   LoginRequest
	}{
		{"missing provider", func(r *LoginRequest) { r.Provider = "" }, local},
		{"missing tenant id", func(r *LoginRequest) { r.TenantID = "" }, local},
		{"missing tenant key", func(r *LoginRequest) { r.TenantKey = "" }, local},
		{"missing user type", func(r *LoginRequest) { r.UserType = "" }, local},
		{"local without email", func(r *LoginRequest) { r.Email = "" }, local},
		{"local without password", func(r *LoginRequest) { r.Password = "" }, local},
		{"federated without assertion", func(r *LoginRequest) { r.Assertion = "" }, fed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.base
			tt.mutate(&req)
			if err := req.Validate(); err == nil {
				t.Error("want validation error, got nil")
			}
		})
	}
}
