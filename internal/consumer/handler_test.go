package consumer

import (
	"errors"
	"testing"

	"github.com/emrahsandernet/kasarcim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) SendEmail(msg model.EmailMessage) error { return m.Called(msg).Error(0) }

func TestDeliver(t *testing.T) {
	log := zap.NewNop()

	t.Run("valid message is sent", func(t *testing.T) {
		s := &mockSender{}
		s.On("SendEmail", mock.MatchedBy(func(m model.EmailMessage) bool {
			return m.To == "ayse@example.com" && m.Template == model.TemplateOrderPaid && m.Data["order_code"] == "SP91186"
		})).Return(nil).Once()

		err := deliver(s, log, []byte(`{"to":"ayse@example.com","subject":"x","template":"order_paid","data":{"order_code":"SP91186"}}`))
		assert.NoError(t, err)
		s.AssertExpectations(t)
	})

	t.Run("garbage is rejected without sending", func(t *testing.T) {
		s := &mockSender{}
		assert.ErrorIs(t, deliver(s, log, []byte("{")), errBadMessage)
		assert.ErrorIs(t, deliver(s, log, []byte(`{"to":"","template":"welcome"}`)), errBadMessage)
		s.AssertNotCalled(t, "SendEmail", mock.Anything)
	})

	t.Run("send failure surfaces", func(t *testing.T) {
		s := &mockSender{}
		boom := errors.New("smtp down")
		s.On("SendEmail", mock.Anything).Return(boom).Once()
		err := deliver(s, log, []byte(`{"to":"a@b.c","template":"welcome"}`))
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, errBadMessage)
	})
}
