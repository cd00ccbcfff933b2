package schema

// Field names referenced by the cleaning pipeline.
const (
	FieldID           = "ID"
	FieldEmail        = "Email"
	FieldTerritory    = "Territory"
	FieldQualifiedOn  = "Qualified on"
	FieldOrganization = "Organization Name"
)

// LeadFields is the lead schema in presentation order.
var LeadFields = []FieldDefinition{
	{Name: FieldID, Required: true},
	{Name: "Lead Status", Required: true},
	{Name: "Status", Required: true},
	{Name: "Lead Stage", Required: true},
	{Name: FieldTerritory, Required: true},
	{Name: "Lead Priority"},
	{Name: "Lead Owner"},
	{Name: "Lead Category"},
	{Name: "Request Type"},

	{Name: "Salutation"},
	{Name: "First Name"},
	{Name: "Middle Name"},
	{Name: "Last Name"},

	{Name: "Job Title"},
	{Name: "Gender"},
	{Name: "Source"},

	{Name: FieldEmail, DisplayFormat: FormatEmail},
	{Name: "Website", DisplayFormat: FormatText},
	{Name: "Mobile No", DisplayFormat: FormatText},
	{Name: "WhatsApp", DisplayFormat: FormatText},
	{Name: "Phone", DisplayFormat: FormatText},
	{Name: "Phone Ext.", DisplayFormat: FormatText},
	{Name: "Alternate Phone(s)", DisplayFormat: FormatText},

	{Name: FieldOrganization, Required: true},
	{Name: "No of Employees"},
	{Name: "CASE Officer Remark"},
	{Name: "CASE Officer Note"},
	{Name: "Market Segment"},
	{Name: "Industry Type"},
	{Name: "Fax"},

	{Name: "Pincode", DisplayFormat: FormatSentence},
	{Name: "City", DisplayFormat: FormatSentence},
	{Name: "State/Province", DisplayFormat: FormatSentence},
	{Name: "Country", DisplayFormat: FormatSentence},
	{Name: "Ship To Address", DisplayFormat: FormatSentence},
	{Name: "Bill To Address", DisplayFormat: FormatSentence},
	{Name: "Full Address", DisplayFormat: FormatSentence},

	{Name: "Qualification Status"},
	{Name: "Qualified By"},
	{Name: FieldQualifiedOn, IsDate: true, DisplayFormat: FormatDate},

	{Name: "Series", SystemGenerated: true},
	{Name: "Annual Revenue"},
}

// leadNameFields are title-cased by the normalizer.
var leadNameFields = []string{
	"First Name", "Middle Name", "Last Name", "Job Title", FieldOrganization,
	"City", "State/Province", "Country", "Source", "Lead Category",
	"Market Segment", "Industry Type", "CASE Officer Remark", "CASE Officer Note",
}

// leadPhoneFields have separators stripped by the normalizer.
var leadPhoneFields = []string{
	"Phone", "Mobile No", "WhatsApp", "Phone Ext.", "Alternate Phone(s)",
}

// LeadOptions maps each dropdown field to its allowed values.
var LeadOptions = map[string][]string{
	"Lead Status": {
		"Lead", "Open", "Replied", "Opportunity", "Quotation",
		"Lost Quotation", "Interested", "Converted", "Do Not Contact",
	},
	"Status":     {"Active", "Inactive", "On Hold"},
	"Lead Stage": {"New", "Contacted", "Qualified", "Proposal", "Negotiation", "Won", "Lost"},
	FieldTerritory: {
		"Sales MG HQ - John Smith",
		"Marketing Central- Jane Doe",
		"IT SP - Bob Johnson",
		"Sales MG HQ - Alice Williams",
		"Marketing North",
	},
	"Lead Priority": {"High", "Medium", "Low"},
	"Lead Category": {"Hot", "Warm", "Cold"},
	"Request Type":  {"Product Enquiry", "Request for Information", "Suggestions", "Other"},
	"Salutation":    {"Mr", "Mrs", "Ms", "Miss", "Dr", "Prof"},
	"Gender":        {"Male", "Female"},
	"Source": {
		"Existing Customer", "Reference", "Advertisement", "Cold Calling",
		"Exhibition", "Supplier Reference", "Mass Mailing", "Customer's Vendor",
		"Campaign", "Walk In", "Website",
	},
	"Market Segment":       {"Upper Income", "Middle Income", "Lower Income"},
	"Industry Type":        industryTypes,
	"Qualification Status": {"Unqualified", "In Process", "Qualified"},
}

// Lead builds the registry for the lead schema.
func Lead() (*Registry, error) {
	opts := []Option{
		WithIdentifier(FieldID),
		WithEmail(FieldEmail),
		WithNameFields(leadNameFields...),
		WithPhoneFields(leadPhoneFields...),
	}
	for field, values := range LeadOptions {
		opts = append(opts, WithOptions(field, values...))
	}
	return NewRegistry(LeadFields, opts...)
}

// MustLead is Lead for package initialisation and tests.
func MustLead() *Registry {
	r, err := Lead()
	if err != nil {
		panic(err)
	}
	return r
}
