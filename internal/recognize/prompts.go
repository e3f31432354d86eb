package recognize

// Extraction prompts per document type. Field names here line up with the
// fallback chains in the reconcile package, but providers do not always
// follow them, which is why every result goes through normalization.

const invoicePrompt = `Examine the Chinese invoice image(s) (发票) and extract all invoices.

Return a JSON object:
{
  "invoices": [
    {
      "projectName": "项目名称/货物名称 summary",
      "totalAmount": number,  // 价税合计
      "invoiceDate": "YYYY-MM-DD",
      "invoiceNumber": "发票号码"
    }
  ]
}

Extract EXACTLY what you see; use 0 or "" for unreadable fields.`

const approvalPrompt = `Examine the approval form image(s) (审批单) and extract the key fields.

Return a JSON object:
{
  "approvalNumber": "审批单号",
  "eventSummary": "事由摘要, one short phrase",
  "eventDetail": "事由详细说明",
  "applicantName": "申请人",
  "department": "部门"
}`

const ticketPrompt = `Examine the transport ticket image(s) (火车票/机票/汽车票) and extract every ticket.

Return a JSON object:
{
  "tickets": [
    {
      "departure": "出发地 city",
      "destination": "到达地 city",
      "date": "YYYY-MM-DD",
      "amount": number  // 票价
    }
  ]
}`

const hotelPrompt = `Examine the hotel folio image(s) (酒店账单) and extract every stay.

Return a JSON object:
{
  "hotels": [
    {
      "city": "城市",
      "location": "酒店名称",
      "amount": number,  // 房费合计
      "days": number     // 入住天数
    }
  ]
}`

const taxiPrompt = `Examine the taxi/ride receipt image(s) (出租车发票/行程单) and extract every ride.

Return a JSON object:
{
  "details": [
    {
      "date": "YYYY-MM-DD",
      "amount": number,
      "startPoint": "起点 if visible",
      "endPoint": "终点 if visible"
    }
  ]
}`

func promptFor(docType DocumentType) string {
	switch docType {
	case DocumentApproval:
		return approvalPrompt
	case DocumentTicket:
		return ticketPrompt
	case DocumentHotel:
		return hotelPrompt
	case DocumentTaxi:
		return taxiPrompt
	default:
		return invoicePrompt
	}
}
