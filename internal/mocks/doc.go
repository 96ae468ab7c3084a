// Package mocks provides shared test doubles for the store and auth interfaces.
//
// Two styles are used. Store mocks (UserStore, TaskStore) embed testify's
// mock.Mock and are driven with On/Return expectations. Small collaborators
// (MockJWTService, MockPasswordVerifier, MockUserDirectory) expose function
// fields with defaults so a test only sets the behaviour it cares about:
//
//	jwtSvc := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserName: "user1", TokenType: auth.TokenTypeAccess}, nil
//	    },
//	}
//
// When adding a new mock, name the file after the interface and assert the
// implementation with a var _ declaration where no import cycle prevents it.
package mocks
