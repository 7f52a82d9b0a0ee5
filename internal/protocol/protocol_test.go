package protocol

import "testing"

func TestTopicName(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"MSFT", "stock.MSFT"},
		{"BRK.A", "stock.BRK.A"},
	}

	for _, tt := range tests {
		if got := TopicName(tt.symbol); got != tt.want {
			t.Errorf("TopicName(%q): got %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestMessageKinds(t *testing.T) {
	tests := []struct {
		msg  Message
		want Kind
	}{
		{Register{}, KindRegister},
		{RegisterAck{}, KindRegisterAck},
		{RequestList{}, KindRequestList},
		{StockListReply{}, KindStockListReply},
		{RequestInfo{}, KindRequestInfo},
		{StockInfoReply{}, KindStockInfoReply},
		{RequestProfile{}, KindRequestProfile},
		{ProfileReply{}, KindProfileReply},
		{Buy{}, KindBuy},
		{Sell{}, KindSell},
		{TransactionConfirmation{}, KindConfirmation},
		{TransactionRefusal{}, KindRefusal},
		{Watch{}, KindWatch},
		{Unwatch{}, KindUnwatch},
		{SubscriptionAck{}, KindSubscriptionAck},
		{Deregister{}, KindDeregister},
		{StockEvent{}, KindStockEvent},
	}

	for _, tt := range tests {
		if got := tt.msg.Kind(); got != tt.want {
			t.Errorf("%T: got kind %s, want %s", tt.msg, got, tt.want)
		}
	}
}
