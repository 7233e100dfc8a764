package flickr

import (
	"context"
	"errors"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// TestAPI wraps flickr.test.*.
type TestAPI struct {
	c *client.Client
}

// Echo sends params back and forth, bypassing the cache.
func (a *TestAPI) Echo(ctx context.Context, params client.Params) (client.Response, error) {
	return write(ctx, a.c, "test.echo", params)
}

// Login returns the user the stored token belongs to. found is false
// when the call is anonymous or the token is rejected.
func (a *TestAPI) Login(ctx context.Context) (User, bool, error) {
	resp, err := write(ctx, a.c, "test.login", nil)
	if err != nil {
		var authErr *client.AuthError
		if errors.As(err, &authErr) || isNotFound(err) {
			return User{}, false, nil
		}
		if code, ok := client.ServiceCode(err); ok && code == codeLoginFailed {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	if _, ok := resp.Get("user"); !ok {
		return User{}, false, nil
	}
	var user User
	if err := resp.Decode(&user, "user"); err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

// codeLoginFailed is returned by flickr.test.login for anonymous or
// insufficiently authorized calls.
const codeLoginFailed = 99
