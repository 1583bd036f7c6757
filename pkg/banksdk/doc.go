/*
Package banksdk is the Go client for the teller bank API, and the home of
the wire types and errors the server writes.

# Login

Login is two steps. Credentials first, which makes the bank send a one
time password to the user, then the OTP which sets the session cookies:

	client := banksdk.NewSDKClient("https://bank.example.com")

	if _, err := client.Login(ctx, "alice@example.com", password); err != nil {
		return err
	}
	if _, err := client.VerifyOTP(ctx, code); err != nil {
		return err
	}

The client keeps the access, refresh and logged_in cookies in its jar, so
later calls are authenticated without any extra plumbing:

	acct, err := client.LookupAccount(ctx, "4821093365")
	res, err := client.Deposit(ctx, "4821093365", decimal.RequireFromString("150.00"))

When the access token expires, rotate the pair:

	_, err := client.Refresh(ctx)

# Errors

Every failure is an *APIError carrying the HTTP status, a stable code and
a message meant for the user. The predefined values compare with
errors.Is on their code:

	_, err := client.VerifyOTP(ctx, "000000")
	if errors.Is(err, banksdk.ErrOTPInvalid) {
		// ask again
	}

Lockout errors carry the lockout window in their message; match those on
Code (ErrorCodeLockedOut, ErrorCodeExceededAttempts).
*/
package banksdk
