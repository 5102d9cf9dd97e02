// Package layer provides the reinsurance transformation layers plugged into
// the computation graph: proportional and non-proportional structures plus
// the derived-output selectors that expose their side channels. The engine
// treats these as external collaborators; it only relies on the channel
// contract each forwarder declares.
package layer

// Layer kinds contributed to the graph by this package.
const (
	KindQuotaShare           = "quota_share"
	KindExcessOfLoss         = "excess_of_loss"
	KindRecovery             = "recovery"
	KindCommission           = "commission"
	KindReinstatementPremium = "reinstatement_premium"
)

// Output channels produced by the domain layers. The gross channel is the
// identity pass-through and serves as the default operand channel, so a
// layer node used in arithmetic behaves like its untransformed input.
const (
	ChannelGross                = "gross"
	ChannelRecovery             = "recovery"
	ChannelCommission           = "commission"
	ChannelReinstatementPremium = "reinstatement_premium"
)
