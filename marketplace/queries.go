package marketplace

var (
	CreateBidderPositionMutation = `mutation ConfirmBidCreateBidderPositionMutation($input: BidderPositionInput!) {
  createBidderPosition(input: $input) {
    position { internalID }
    bidder { internalID }
  }
}`

	CreateCreditCardAndUpdatePhoneMutation = `mutation RegisterCreateCreditCardAndUpdatePhoneMutation($creditCardInput: CreditCardInput!, $profileInput: UpdateMyProfileInput!) {
  createCreditCard(input: $creditCardInput) {
    creditCard { internalID }
  }
  updateMyUserProfile(input: $profileInput) {
    user { internalID }
  }
}`

	BidderPositionStatusQuery = `query BidderPositionQuery($bidderPositionID: String!) {
  bidderPositionStatus(bidderPositionID: $bidderPositionID) {
    bidderPositionID
    status
    bidderID
  }
}`

	SaleIncrementsQuery = `query SaleIncrementsQuery($saleID: String!) {
  sale(id: $saleID) {
    internalID
    slug
    isClosed
    isRegistrationClosed
    bidIncrements
  }
}`

	ActiveSalesQuery = `query ActiveSalesQuery {
  sales(live: true) {
    internalID
    slug
    isClosed
    isRegistrationClosed
    bidIncrements
  }
}`
)
