package broker

import (
	"go.uber.org/zap"

	"github.com/efreitasn/stockbroker/internal/domain"
	"github.com/efreitasn/stockbroker/internal/engine"
	"github.com/efreitasn/stockbroker/internal/protocol"
)

// dispatch handles one request from a client's to-broker queue. Replies go
// to the client's from-broker queue; deregistration gets no reply. The
// per-session consumer is single-threaded, so requests from one client are
// processed strictly in arrival order.
func (r *SessionRegistry) dispatch(sess *session, env protocol.Envelope) {
	switch msg := env.Msg.(type) {
	case protocol.RequestList:
		r.reply(sess, protocol.StockListReply{Stocks: r.engine.ListStocks()})

	case protocol.RequestInfo:
		snap, err := r.engine.Info(msg.Symbol)
		if err != nil {
			r.reply(sess, protocol.TransactionRefusal{Reason: engine.RefusalText(err)})
			return
		}
		r.reply(sess, protocol.StockInfoReply{Stock: snap})

	case protocol.RequestProfile:
		profile, err := r.engine.Profile(sess.clientID)
		if err != nil {
			r.reply(sess, protocol.TransactionRefusal{Reason: engine.RefusalText(err)})
			return
		}
		r.reply(sess, protocol.ProfileReply{
			ClientID: profile.ClientID,
			Funds:    profile.Funds,
			Holdings: profile.Holdings,
		})

	case protocol.Buy:
		lot, err := r.engine.Buy(sess.clientID, msg.Symbol, msg.Quantity)
		if err != nil {
			r.reply(sess, protocol.TransactionRefusal{Reason: engine.RefusalText(err)})
			return
		}
		r.reply(sess, protocol.TransactionConfirmation{Text: engine.ConfirmationText("bought", lot)})

	case protocol.Sell:
		lot, err := r.engine.Sell(sess.clientID, msg.Symbol, msg.Quantity)
		if err != nil {
			r.reply(sess, protocol.TransactionRefusal{Reason: engine.RefusalText(err)})
			return
		}
		r.reply(sess, protocol.TransactionConfirmation{Text: engine.ConfirmationText("sold", lot)})

	case protocol.Watch:
		already, err := r.fanout.Watch(sess.clientID, msg.Symbol)
		if err != nil {
			r.reply(sess, protocol.TransactionRefusal{Reason: engine.RefusalText(err)})
			return
		}
		ack := protocol.SubscriptionAck{Symbol: msg.Symbol, Subscribed: true}
		if already {
			ack.Note = "already subscribed"
		}
		r.reply(sess, ack)

	case protocol.Unwatch:
		was, err := r.fanout.Unwatch(sess.clientID, msg.Symbol)
		if err != nil {
			r.reply(sess, protocol.TransactionRefusal{Reason: engine.RefusalText(err)})
			return
		}
		ack := protocol.SubscriptionAck{Symbol: msg.Symbol, Subscribed: false}
		if !was {
			ack.Note = "not subscribed"
		}
		r.reply(sess, ack)

	case protocol.Deregister:
		r.Deregister(sess.clientID)

	default:
		r.log.Warn("unsupported message kind",
			zap.String("client_id", sess.clientID),
			zap.String("kind", string(env.Msg.Kind())),
		)
		r.reply(sess, protocol.TransactionRefusal{Reason: engine.RefusalText(domain.ErrMalformedRequest)})
	}
}

// reply sends a message on the session's from-broker queue. Best-effort: a
// full or closed queue is logged and the committed state stands.
func (r *SessionRegistry) reply(sess *session, msg protocol.Message) {
	err := sess.fromBroker.Send(protocol.Envelope{ClientID: sess.clientID, Msg: msg})
	if err != nil {
		r.log.Warn("reply dropped",
			zap.String("client_id", sess.clientID),
			zap.String("kind", string(msg.Kind())),
			zap.Error(err),
		)
	}
}
