package schemagate

// Fixed enumerations of the retail rule set.
var (
	FulfillmentTypes = []string{"Delivery", "Self-Pickup", "Delivery and Self-Pickup"}
	TimeLabels       = []string{"enable", "disable"}
	DistanceUnits    = []string{"km"}
	CategoryTagCodes = []string{"type", "attr"}
	CategoryListCode = []string{"type", "name", "seq"}
	ItemTagCodes     = []string{"origin", "attribute"}
)

const (
	currencyINR        = "INR"
	variantGroup       = "variant_group"
	originCountryCode  = "country"
	consumerCareFields = 3
)

// Item level protocol extension fields.
const (
	fieldReturnable         = "@ondc/org/returnable"
	fieldCancellable        = "@ondc/org/cancellable"
	fieldReturnWindow       = "@ondc/org/return_window"
	fieldSellerPickupReturn = "@ondc/org/seller_pickup_return"
	fieldTimeToShip         = "@ondc/org/time_to_ship"
	fieldAvailableOnCOD     = "@ondc/org/available_on_cod"
	fieldConsumerCare       = "@ondc/org/contact_details_consumer_care"
	fieldPackagedCommodity  = "@ondc/org/statutory_reqs_packaged_commodities"
)

var packagedCommodityFields = []string{
	"manufacturer_or_packer_name",
	"manufacturer_or_packer_address",
	"common_or_generic_name_of_commodity",
	"month_year_of_manufacture_packing_import",
}
