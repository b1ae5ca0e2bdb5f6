package manager

import (
	"testing"
	"time"

	"github.com/operaxhq/operax/core"
)

func TestMakeVerifyToken(t *testing.T) {
	conf := &core.Config{
		SecretKey:                 "secret",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}

	now := time.Now()
	active := true
	mgr := Manager{
		ID:        "4e8d2b7a-9d9f-4c6e-b7a1-0f0e9a1b2c3d",
		Name:      "T",
		Email:     "t@test.test",
		IsActive:  &active,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = mgr.SetPassword("pwd")

	validToken, err := MakeToken(conf, mgr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakeToken(conf, mgr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	NowFunc = time.Now // reset

	tests := []struct {
		name    string
		mgr     Manager
		token   string
		wantErr error
	}{
		{name: "no token", mgr: mgr, wantErr: errInvalidToken},
		{name: "invalid parts len", mgr: mgr, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", mgr: mgr, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", mgr: mgr, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", mgr: mgr, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", mgr: mgr, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", mgr: mgr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyToken(conf, tt.mgr, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	mgr := Manager{ID: "4e8d2b7a-9d9f-4c6e-b7a1-0f0e9a1b2c3d"}

	uid := EncodeUID(mgr)
	id, err := decodeUID(uid)
	if err != nil {
		t.Fatalf("decodeUID() failed: %v", err)
	}
	if id != mgr.ID {
		t.Errorf("decodeUID() = %s, want %s", id, mgr.ID)
	}

	if _, err = decodeUID("???not-base64???"); err == nil {
		t.Error("decodeUID() expected error on invalid input")
	}
}
