package amqp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/okian/clubhouse/internal/adapters/mq/amqp"
	"github.com/okian/clubhouse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type sent struct {
	exchange, key string
	msg           amqp091.Publishing
}

type fakeChannel struct {
	sent   []sent
	err    error
	closed bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, sent{exchange, key, msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher(t *testing.T) {
	Convey("Given a publisher over a channel", t, func() {
		ch := &fakeChannel{}
		p := amqp.NewWithChannel(ch, "club.submissions")
		at := time.Date(2025, time.October, 3, 10, 0, 0, 0, time.UTC)
		n := model.Notification{ID: "n1", Kind: model.KindApplication, Confirmation: "doc42", At: at}

		Convey("When a notification is published", func() {
			err := p.Publish(context.Background(), n)

			Convey("Then a persistent JSON message goes to the kind's routing key", func() {
				So(err, ShouldBeNil)
				So(ch.sent, ShouldHaveLength, 1)
				s := ch.sent[0]
				So(s.exchange, ShouldEqual, "club.submissions")
				So(s.key, ShouldEqual, "submission.application")
				So(s.msg.ContentType, ShouldEqual, "application/json")
				So(s.msg.DeliveryMode, ShouldEqual, amqp091.Persistent)
				So(s.msg.MessageId, ShouldEqual, "n1")

				var body model.Notification
				So(json.Unmarshal(s.msg.Body, &body), ShouldBeNil)
				So(body.Confirmation, ShouldEqual, "doc42")
				So(body.At.Equal(at), ShouldBeTrue)
			})
		})

		Convey("When the channel rejects the message", func() {
			ch.err = errors.New("channel/connection is not open")
			err := p.Publish(context.Background(), n)

			Convey("Then the cause is wrapped", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ch.err), ShouldBeTrue)
			})
		})

		Convey("When the publisher is closed", func() {
			So(p.Close(), ShouldBeNil)
			So(p.Close(), ShouldBeNil)

			Convey("Then publishing is refused and health fails", func() {
				So(ch.closed, ShouldBeTrue)
				So(errors.Is(p.Publish(context.Background(), n), amqp.ErrClosed), ShouldBeTrue)
				So(errors.Is(p.HealthCheck(), amqp.ErrClosed), ShouldBeTrue)
			})
		})

		Convey("Then a fresh publisher is healthy", func() {
			So(p.HealthCheck(), ShouldBeNil)
		})
	})
}
