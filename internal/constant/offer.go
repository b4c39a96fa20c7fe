package constant

const (
	OfferQueueName  = "offer_queue"
	OfferQueueGroup = "offer_group"

	OfferStreamName              = "offer"
	OfferStreamSubjectAll        = "offer.*"
	OfferStreamSubjectBuildOffer = "offer.build_offer"
)
