package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogin() *Login {
	return NewLogin(NewValidator(DefaultMessages()))
}

func fill(l *Login, email, password string) {
	l.Change(FieldEmail, email)
	l.Change(FieldPassword, password)
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator(DefaultMessages())
	msgs := DefaultMessages()

	tests := []struct {
		name   string
		values Values
		want   map[Field]string
	}{
		{"empty", Values{}, map[Field]string{FieldEmail: msgs.Required, FieldPassword: msgs.Required}},
		{"bad email", Values{Email: "not-an-email", Password: "longenough"}, map[Field]string{FieldEmail: msgs.Email}},
		{"short password", Values{Email: "a@b.com", Password: "short"}, map[Field]string{FieldPassword: msgs.PasswordShort}},
		{"seven chars", Values{Email: "a@b.com", Password: "1234567"}, map[Field]string{FieldPassword: msgs.PasswordShort}},
		{"eight chars", Values{Email: "a@b.com", Password: "12345678"}, map[Field]string{}},
		{"multibyte password", Values{Email: "a@b.com", Password: "éééééééé"}, map[Field]string{}},
		{"remember me ignored", Values{Email: "a@b.com", Password: "12345678", RememberMe: true}, map[Field]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.values))
		})
	}
}

func TestErrorsHiddenUntilTouched(t *testing.T) {
	l := newLogin()

	assert.Len(t, l.Errors(), 2)
	assert.Empty(t, l.VisibleErrors(), "pristine fields show nothing")

	l.Change(FieldEmail, "nope")
	visible := l.VisibleErrors()
	assert.Equal(t, "Adresse email invalide", visible[FieldEmail])
	assert.NotContains(t, visible, FieldPassword)

	l.Blur(FieldPassword)
	assert.Equal(t, "Ce champ est requis", l.VisibleErrors()[FieldPassword])
}

func TestInvalidBecomesValidOnCorrection(t *testing.T) {
	l := newLogin()
	l.Change(FieldEmail, "nope")
	require.Contains(t, l.VisibleErrors(), FieldEmail)

	l.Change(FieldEmail, "jo@example.com")
	assert.NotContains(t, l.VisibleErrors(), FieldEmail)
	assert.True(t, l.Touched(FieldEmail))
}

func TestSubmitInvalidEmailBlocks(t *testing.T) {
	l := newLogin()
	fill(l, "not-an-email", "longenough")

	called := false
	err := l.Submit(context.Background(), func(context.Context, Values) error {
		called = true
		return nil
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Adresse email invalide", verr.Fields[FieldEmail])
	assert.False(t, called)
	assert.False(t, l.Submitting())
}

func TestSubmitShortPasswordOnly(t *testing.T) {
	l := newLogin()
	fill(l, "a@b.com", "short")

	called := false
	err := l.Submit(context.Background(), func(context.Context, Values) error {
		called = true
		return nil
	})

	assert.False(t, called)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[Field]string{FieldPassword: DefaultMessages().PasswordShort}, verr.Fields)
	assert.Equal(t, map[Field]string{FieldPassword: DefaultMessages().PasswordShort}, l.VisibleErrors())
}

func TestSubmitTouchesUnvisitedFields(t *testing.T) {
	l := newLogin()

	err := l.Submit(context.Background(), func(context.Context, Values) error { return nil })
	require.Error(t, err)

	assert.True(t, l.Touched(FieldEmail))
	assert.True(t, l.Touched(FieldPassword))
	assert.Len(t, l.State().Errors, 2)
	assert.Contains(t, err.Error(), "email")
}

func TestSubmitValidCallsOnceWithValues(t *testing.T) {
	l := newLogin()
	fill(l, "a@b.com", "correct horse")
	l.Change(FieldRememberMe, "on")

	calls := 0
	var got Values
	err := l.Submit(context.Background(), func(_ context.Context, v Values) error {
		calls++
		got = v
		assert.True(t, l.Submitting(), "busy while the callback runs")
		assert.True(t, l.State().Submitting)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Values{Email: "a@b.com", Password: "correct horse", RememberMe: true}, got)
	assert.False(t, l.Submitting())
}

func TestSubmitReEnablesAfterFailure(t *testing.T) {
	l := newLogin()
	fill(l, "a@b.com", "12345678")

	boom := errors.New("rejected")
	err := l.Submit(context.Background(), func(context.Context, Values) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, l.Submitting())
}

func TestStartPendingBlocksSecondSubmit(t *testing.T) {
	l := newLogin()
	fill(l, "a@b.com", "12345678")

	release := make(chan struct{})
	done, err := l.Start(context.Background(), func(context.Context, Values) error {
		<-release
		return nil
	})
	require.NoError(t, err)
	assert.True(t, l.Submitting())

	_, err = l.Start(context.Background(), func(context.Context, Values) error { return nil })
	assert.ErrorIs(t, err, ErrSubmitting)

	close(release)
	assert.NoError(t, <-done)
	assert.False(t, l.Submitting())

	_, open := <-done
	assert.False(t, open)
}

func TestPasswordVisibilityIsCosmetic(t *testing.T) {
	l := newLogin()
	fill(l, "a@b.com", "short")
	before := l.Errors()

	assert.True(t, l.TogglePasswordVisibility())
	assert.True(t, l.State().ShowPassword)
	assert.False(t, l.TogglePasswordVisibility())
	assert.Equal(t, before, l.Errors())
}

func TestStateAndReset(t *testing.T) {
	l := newLogin()
	fill(l, "a@b.com", "12345678")
	l.Change(FieldRememberMe, "true")
	l.Change(Field("unknown"), "x")

	s := l.State()
	assert.Equal(t, "a@b.com", s.Email)
	assert.Equal(t, "12345678", s.Password)
	assert.True(t, s.RememberMe)
	assert.Empty(t, s.Errors)

	l.Reset()
	assert.Equal(t, Values{}, l.Values())
	assert.False(t, l.Touched(FieldEmail))
	assert.Empty(t, l.VisibleErrors())
}
