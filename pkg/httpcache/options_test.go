package httpcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "web-cache", opts.Prefix)
	assert.Equal(t, 24*time.Hour, opts.Expire)
	assert.Equal(t, DefaultStoreTimeout, opts.StoreTimeout)
	assert.False(t, opts.Clean)
	assert.NoError(t, opts.Validate())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Options) {}},
		{name: "one second expire", modify: func(o *Options) { o.Expire = time.Second }},
		{name: "empty prefix", modify: func(o *Options) { o.Prefix = "" }, wantErr: true},
		{name: "zero expire uses default", modify: func(o *Options) { o.Expire = 0 }},
		{name: "zero store timeout uses default", modify: func(o *Options) { o.StoreTimeout = 0 }},
		{name: "negative expire", modify: func(o *Options) { o.Expire = -time.Second }, wantErr: true},
		{name: "sub-second expire", modify: func(o *Options) { o.Expire = 500 * time.Millisecond }, wantErr: true},
		{name: "negative store timeout", modify: func(o *Options) { o.StoreTimeout = -time.Second }, wantErr: true},
		{name: "negative max body", modify: func(o *Options) { o.MaxBodySize = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)

			err := opts.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
